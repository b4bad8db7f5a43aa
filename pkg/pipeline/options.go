package pipeline

import (
	"time"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

// BaseOption implements every model.PipelineOption hook as a no-op. Embed it to
// implement only the hooks an option needs.
type BaseOption struct{}

func (BaseOption) New() error                                         { return nil }
func (BaseOption) PrepareStage(_, _ *model.StepInfo) error            { return nil }
func (BaseOption) PrepareReducer(_, _ *model.StepInfo) error          { return nil }
func (BaseOption) PrepareSink(_, _ *model.StepInfo) error             { return nil }
func (BaseOption) AfterSink(_ *model.StepInfo, _ time.Duration) error { return nil }
func (BaseOption) Finish() error                                      { return nil }

func (BaseOption) OnStageOutput(_ *model.StepInfo, _ model.StageResult, _ time.Duration) error {
	return nil
}

func (BaseOption) AfterReduce(_ *model.StepInfo, _ int, _ time.Duration) error {
	return nil
}

func (BaseOption) OnSinkOutput(_, _ *model.StepInfo, _, _ time.Duration) error {
	return nil
}

var _ model.PipelineOption = BaseOption{}
