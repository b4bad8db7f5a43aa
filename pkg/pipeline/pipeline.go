package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

// Source is a forward only iterator over the input records.
type Source interface {
	// Next returns the next record. It returns false once the input is exhausted.
	Next(ctx context.Context) (model.Record, bool, error)
	// Close releases any resources held by the source.
	Close() error
}

// Sink receives the output of a pipeline.
type Sink interface {
	// Emit receives the value that survived the pipeline for rec.
	Emit(ctx context.Context, value any, rec model.Record) error
	// EmitResult receives the value returned by the reducer.
	EmitResult(ctx context.Context, value any) error
}

// Pipeline is an ordered chain of stages with an optional reducer.
type Pipeline struct {
	opts      []model.PipelineOption
	stages    []*stage
	reducer   *reducer
	sinkInfo  *model.StepInfo
	startTime time.Time
	ran       bool
}

// New creates a new pipeline.
func New(opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		opts:     opts,
		sinkInfo: &model.StepInfo{Type: model.SinkStepType, Name: "sink"},
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Batch reports whether a reducer is set.
func (p *Pipeline) Batch() bool {
	return p.reducer != nil
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// lastStep returns the step the next added step is linked to.
func (p *Pipeline) lastStep() *model.StepInfo {
	if p.reducer != nil {
		return p.reducer.info
	}

	if len(p.stages) == 0 {
		return model.StartStep
	}

	return p.stages[len(p.stages)-1].info
}

// Run pulls every record from src through the pipeline and writes the output to sink.
// src is closed before Run returns.
func (p *Pipeline) Run(ctx context.Context, src Source, sink Sink) (err error) {
	if src == nil {
		return ErrSourceMustBeSet
	}

	defer func() {
		closeErr := src.Close()
		if err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "unable to close source")
		}
	}()

	if sink == nil {
		return ErrSinkMustBeSet
	}

	if p.ran {
		return ErrPipelineAlreadyRun
	}

	p.ran = true
	p.startTime = time.Now()

	defer func() {
		finishErr := p.finishRun()
		if err == nil {
			err = finishErr
		}
	}()

	for _, opt := range p.opts {
		err := opt.PrepareSink(p.lastStep(), p.sinkInfo)
		if err != nil {
			return errors.Wrap(err, "unable to run prepare sink function")
		}
	}

	if p.reducer == nil {
		err = p.stream(ctx, src, sink)
	} else {
		err = p.batch(ctx, src, sink)
	}

	if err != nil {
		return err
	}

	for _, opt := range p.opts {
		err := opt.AfterSink(p.sinkInfo, time.Since(p.startTime))
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}

// next pulls the next record unless the context is done.
func (p *Pipeline) next(ctx context.Context, src Source) (model.Record, bool, error) {
	select {
	case <-ctx.Done():
		return model.Record{}, false, errors.Wrap(ctx.Err(), "pipeline stopped")
	default:
	}

	rec, ok, err := src.Next(ctx)
	if err != nil {
		return model.Record{}, false, errors.Wrap(err, "unable to pull next record")
	}

	return rec, ok, nil
}

// stream emits every surviving value before pulling the next record.
func (p *Pipeline) stream(ctx context.Context, src Source, sink Sink) error {
	for {
		startIter := time.Now()

		rec, ok, err := p.next(ctx, src)
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		value, keep, err := p.apply(ctx, rec)
		if err != nil {
			return err
		}

		if !keep {
			continue
		}

		err = p.emit(ctx, startIter, func() error {
			return sink.Emit(ctx, value, rec)
		})
		if err != nil {
			return err
		}
	}
}

// batch collects every surviving value and hands them to the reducer once.
func (p *Pipeline) batch(ctx context.Context, src Source, sink Sink) error {
	items := []any{}

	for {
		rec, ok, err := p.next(ctx, src)
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		value, keep, err := p.apply(ctx, rec)
		if err != nil {
			return err
		}

		if keep {
			items = append(items, value)
		}
	}

	startIter := time.Now()

	result, err := p.reduce(ctx, items)
	if err != nil {
		return err
	}

	return p.emit(ctx, startIter, func() error {
		return sink.EmitResult(ctx, result)
	})
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
