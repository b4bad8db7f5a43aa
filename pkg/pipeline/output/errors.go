package output

import (
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// ErrDownstreamClosed is returned when the reader side of the output stopped reading.
var ErrDownstreamClosed = errors.New("downstream closed")

func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
		return ErrDownstreamClosed
	}

	return errors.Wrap(err, "unable to write output")
}
