package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

type reducer struct {
	info *model.StepInfo
	fn   model.Reducer
}

// SetReducer switches the pipeline to batch mode. Only one reducer can be set.
func SetReducer(p *Pipeline, name string, fn model.Reducer) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if fn == nil {
		return ErrReducerMustBeSet
	}

	if p.reducer != nil {
		return ErrReducerAlreadySet
	}

	red := &reducer{
		info: &model.StepInfo{
			Type:  model.ReducerStepType,
			Name:  name,
			Index: len(p.stages),
		},
		fn: fn,
	}

	for _, opt := range p.opts {
		err := opt.PrepareReducer(p.lastStep(), red.info)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare reducer function")
		}
	}

	p.reducer = red

	return nil
}

func (p *Pipeline) reduce(ctx context.Context, items []any) (result any, err error) {
	startFn := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = &StageError{Stage: p.reducer.info.Name, Index: -1, Err: errors.Errorf("panic: %v", r)}
		}
	}()

	result, err = p.reducer.fn(ctx, items)
	if err != nil {
		return nil, &StageError{Stage: p.reducer.info.Name, Index: -1, Err: err}
	}

	endFn := time.Since(startFn)

	for _, opt := range p.opts {
		err := opt.AfterReduce(p.reducer.info, len(items), endFn)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run after reduce function")
		}
	}

	return result, nil
}
