package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// emit runs writeFn and reports its timings to the options. A closed downstream is
// returned as is so callers can recognise it.
func (p *Pipeline) emit(_ context.Context, startIter time.Time, writeFn func() error) error {
	startFn := time.Now()

	err := writeFn()
	if err != nil {
		if IsDownstreamClosed(err) {
			return err
		}

		return errors.Wrap(err, "unable to emit value")
	}

	endFn := time.Since(startFn)
	endIter := time.Since(startIter) - endFn

	for _, opt := range p.opts {
		err := opt.OnSinkOutput(p.lastStep(), p.sinkInfo, endIter, endFn)
		if err != nil {
			return errors.Wrap(err, "unable to run on sink output function")
		}
	}

	return nil
}
