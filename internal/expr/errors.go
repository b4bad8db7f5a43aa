package expr

import "github.com/pkg/errors"

var (
	ErrEmptyReducer   = errors.New("reducer expression must not be empty")
	ErrWrongArgCount  = errors.New("wrong number of arguments")
	ErrNotACollection = errors.New("argument must be a list")
)
