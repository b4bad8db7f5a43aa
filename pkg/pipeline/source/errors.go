package source

import "github.com/pkg/errors"

var ErrReaderMustBeSet = errors.New("reader must be set")
