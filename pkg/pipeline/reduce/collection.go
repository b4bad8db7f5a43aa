package reduce

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Collection is the ordered result of a pipeline.
type Collection []any

// Len returns the number of elements.
func (c Collection) Len() int {
	return len(c)
}

// At returns the element at position i.
func (c Collection) At(i int) any {
	return c[i]
}

// KeyFunc extracts the number used by Sum and Mean from an element.
type KeyFunc func(elem any) (float64, error)

// Number converts an element to a float64. Strings are trimmed before parsing.
func Number(elem any) (float64, error) {
	if str, ok := elem.(string); ok {
		elem = strings.TrimSpace(str)
	}

	f, err := cast.ToFloat64E(elem)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to convert %v to a number", elem)
	}

	return f, nil
}

var leadingNumber = regexp.MustCompile(`^\s*[-+]?\d+(\.\d+)?`)

// Leading converts the numeric prefix of an element to a float64, and anything
// without such a prefix to 0. Non string elements are converted with Number.
func Leading(elem any) (float64, error) {
	str, ok := elem.(string)
	if !ok {
		return Number(elem)
	}

	prefix := leadingNumber.FindString(str)
	if prefix == "" {
		return 0, nil
	}

	return Number(prefix)
}

// Sum returns the sum of key(elem) over c. A nil key uses Number.
func Sum(c Collection, key KeyFunc) (float64, error) {
	if key == nil {
		key = Number
	}

	total := 0.0

	for i, elem := range c {
		f, err := key(elem)
		if err != nil {
			return 0, errors.Wrapf(err, "element %d", i)
		}

		total += f
	}

	return total, nil
}

// Mean returns Sum(c, key) divided by the number of elements.
func Mean(c Collection, key KeyFunc) (float64, error) {
	if len(c) == 0 {
		return 0, ErrEmptyCollection
	}

	total, err := Sum(c, key)
	if err != nil {
		return 0, err
	}

	return total / float64(len(c)), nil
}

// Sorted returns a sorted copy of c. Elements are compared as numbers when all of them
// are numbers, as text otherwise.
func Sorted(c Collection) Collection {
	res := make(Collection, len(c))
	copy(res, c)

	numbers := make([]float64, len(res))
	numeric := true

	for i, elem := range res {
		f, err := cast.ToFloat64E(elem)
		if err != nil {
			numeric = false

			break
		}

		numbers[i] = f
	}

	if numeric {
		sort.Stable(byNumber{items: res, keys: numbers})

		return res
	}

	sort.SliceStable(res, func(i, j int) bool {
		return fmt.Sprint(res[i]) < fmt.Sprint(res[j])
	})

	return res
}

// Reversed returns a copy of c in reverse order.
func Reversed(c Collection) Collection {
	res := make(Collection, len(c))
	for i, elem := range c {
		res[len(c)-1-i] = elem
	}

	return res
}

type byNumber struct {
	items Collection
	keys  []float64
}

func (b byNumber) Len() int           { return len(b.items) }
func (b byNumber) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byNumber) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// identity returns a comparable value identifying elem.
func identity(elem any) any {
	if elem == nil || reflect.TypeOf(elem).Comparable() {
		return elem
	}

	return fmt.Sprintf("%#v", elem)
}
