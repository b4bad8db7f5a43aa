package output

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cast"
)

// Inspected is a literal representation of a value. It is always written as one block.
type Inspected string

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Inspect returns a compact literal representation of v, e.g. [3, 2, 1] or ["a", "b"].
func Inspect(v any) Inspected {
	return Inspected(inspect(v))
}

// Dump returns a detailed, multi line, representation of v including its types.
func Dump(v any) Inspected {
	return Inspected(dumper.Sdump(v))
}

// Stringify returns the text written for a single value.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case Inspected:
		return string(val)
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	}

	if isCollection(v) {
		return inspect(v)
	}

	str, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return str
}

func isSequence(v any) bool {
	if v == nil {
		return false
	}

	if _, ok := v.([]byte); ok {
		return false
	}

	kind := reflect.TypeOf(v).Kind()

	return kind == reflect.Slice || kind == reflect.Array
}

func isCollection(v any) bool {
	return isSequence(v) || (v != nil && reflect.TypeOf(v).Kind() == reflect.Map)
}

func inspect(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(val)
	case Inspected:
		return string(val)
	case []byte:
		return strconv.Quote(string(val))
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = inspect(rv.Index(i).Interface())
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case reflect.Map:
		parts := make([]string, 0, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			parts = append(parts, inspect(iter.Key().Interface())+": "+inspect(iter.Value().Interface()))
		}

		sort.Strings(parts)

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return Stringify(v)
	}
}
