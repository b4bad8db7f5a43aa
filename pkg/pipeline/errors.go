package pipeline

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/output"
)

var (
	ErrPipelineMustBeSet  = errors.New("p must be set")
	ErrStageMustBeSet     = errors.New("stage must be set")
	ErrReducerMustBeSet   = errors.New("reducer must be set")
	ErrReducerAlreadySet  = errors.New("reducer already set")
	ErrSourceMustBeSet    = errors.New("source must be set")
	ErrSinkMustBeSet      = errors.New("sink must be set")
	ErrPipelineAlreadyRun = errors.New("pipeline already run")
)

// StageError is returned when a stage or the reducer fails.
type StageError struct {
	Stage string
	// Index is the position of the record in the input, -1 for the reducer.
	Index int
	Err   error
}

func (e *StageError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("reducer %q: %v", e.Stage, e.Err)
	}

	return fmt.Sprintf("stage %q on record %d: %v", e.Stage, e.Index+1, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsDownstreamClosed reports whether err means the output consumer went away.
func IsDownstreamClosed(err error) bool {
	return errors.Is(err, output.ErrDownstreamClosed)
}
