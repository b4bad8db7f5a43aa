package reduce

import "github.com/pkg/errors"

var ErrEmptyCollection = errors.New("collection must not be empty")
