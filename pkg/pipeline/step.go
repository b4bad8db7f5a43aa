package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

type stage struct {
	info *model.StepInfo
	fn   model.Stage
}

// AddStage appends a stage to the pipeline.
func AddStage(p *Pipeline, name string, fn model.Stage) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if fn == nil {
		return ErrStageMustBeSet
	}

	if p.reducer != nil {
		return errors.Wrapf(ErrReducerAlreadySet, "unable to add stage %q after the reducer", name)
	}

	stg := &stage{
		info: &model.StepInfo{
			Type:  model.StageStepType,
			Name:  name,
			Index: len(p.stages),
		},
		fn: fn,
	}

	for _, opt := range p.opts {
		err := opt.PrepareStage(p.lastStep(), stg.info)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare stage function")
		}
	}

	p.stages = append(p.stages, stg)

	return nil
}

// Apply runs value through stages the same way a pipeline does for one record.
// It returns the final value and whether the record survived.
func Apply(ctx context.Context, value any, index int, stages ...model.Stage) (any, bool, error) {
	return walk(value, len(stages), func(i int, current any) (model.StageResult, error) {
		if stages[i] == nil {
			return model.StageResult{}, ErrStageMustBeSet
		}

		return call(ctx, stages[i], current, index)
	})
}

func (p *Pipeline) apply(ctx context.Context, rec model.Record) (any, bool, error) {
	return walk(rec.Value, len(p.stages), func(i int, current any) (model.StageResult, error) {
		stg := p.stages[i]

		startFn := time.Now()

		res, err := call(ctx, stg.fn, current, rec.Index)
		if err != nil {
			return res, &StageError{Stage: stg.info.Name, Index: rec.Index, Err: err}
		}

		endFn := time.Since(startFn)

		for _, opt := range p.opts {
			err := opt.OnStageOutput(stg.info, res, endFn)
			if err != nil {
				return res, errors.Wrap(err, "unable to run on stage output function")
			}
		}

		return res, nil
	})
}

// walk applies total stages in order. A false filter result stops the walk and drops
// the record, a true one leaves the value unchanged, anything else replaces it.
func walk(value any, total int, fn func(i int, current any) (model.StageResult, error)) (any, bool, error) {
	current := value

	for i := 0; i < total; i++ {
		res, err := fn(i, current)
		if err != nil {
			return nil, false, err
		}

		switch res.Kind {
		case model.FilterResult:
			if !res.Keep {
				return nil, false, nil
			}
		case model.ReplaceResult:
			current = res.Value
		default:
			return nil, false, errors.Errorf("unknown stage result kind %d", res.Kind)
		}
	}

	return current, true, nil
}

// call runs a stage and turns a panic into an error.
func call(ctx context.Context, fn model.Stage, value any, index int) (res model.StageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	return fn(ctx, value, index)
}
