package expr

import (
	"reflect"

	exprlang "github.com/expr-lang/expr"
	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/output"
	"github.com/askiada/go-linepipe/pkg/pipeline/reduce"
)

// helpers are the functions available to every expression. Numeric helpers read the
// leading number of a string, so "12abc" counts as 12 and "abc" as 0.
func helpers() []exprlang.Option {
	return []exprlang.Option{
		exprlang.Function("sum", collectionFunc(func(c reduce.Collection) (any, error) {
			return reduce.Sum(c, reduce.Leading)
		})),
		exprlang.Function("mean", collectionFunc(func(c reduce.Collection) (any, error) {
			return reduce.Mean(c, reduce.Leading)
		})),
		exprlang.Function("grouped", collectionFunc(func(c reduce.Collection) (any, error) {
			return reduce.Grouped(c), nil
		})),
		exprlang.Function("counted", collectionFunc(func(c reduce.Collection) (any, error) {
			return reduce.Counted(c), nil
		})),
		exprlang.Function("sorted", collectionFunc(func(c reduce.Collection) (any, error) {
			return reduce.Sorted(c), nil
		})),
		exprlang.Function("reversed", collectionFunc(func(c reduce.Collection) (any, error) {
			return reduce.Reversed(c), nil
		})),
		exprlang.Function("inspect", valueFunc(func(v any) (any, error) {
			return output.Inspect(v), nil
		})),
		exprlang.Function("dump", valueFunc(func(v any) (any, error) {
			return output.Dump(v), nil
		})),
		exprlang.Function("num", valueFunc(func(v any) (any, error) {
			return reduce.Leading(v)
		})),
	}
}

func valueFunc(fn func(v any) (any, error)) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, errors.Wrapf(ErrWrongArgCount, "got %d, want 1", len(params))
		}

		return fn(params[0])
	}
}

func collectionFunc(fn func(c reduce.Collection) (any, error)) func(params ...any) (any, error) {
	return valueFunc(func(v any) (any, error) {
		c, err := toCollection(v)
		if err != nil {
			return nil, err
		}

		return fn(c)
	})
}

func toCollection(v any) (reduce.Collection, error) {
	switch c := v.(type) {
	case nil:
		return reduce.Collection{}, nil
	case reduce.Collection:
		return c, nil
	case []any:
		return c, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errors.Wrapf(ErrNotACollection, "got %T", v)
	}

	res := make(reduce.Collection, rv.Len())
	for i := range res {
		res[i] = rv.Index(i).Interface()
	}

	return res, nil
}
