package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStageOption
	pipelineReducerOption
	pipelineSinkOption

	// Finish runs after the pipeline is finished, whatever the outcome.
	Finish() error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// PrepareStage runs when a stage is added to the pipeline.
	PrepareStage(parentStep, step *StepInfo) error
	// OnStageOutput runs every time a stage returns for a record.
	OnStageOutput(step *StepInfo, result StageResult, computationDuration time.Duration) error
}

// pipelineReducerOption defines the interface for reducer options at the pipeline level.
type pipelineReducerOption interface {
	// PrepareReducer runs when the reducer is set.
	PrepareReducer(parentStep, step *StepInfo) error
	// AfterReduce runs once the reducer returned.
	AfterReduce(step *StepInfo, items int, computationDuration time.Duration) error
}

// pipelineSinkOption defines the interface for sink options at the pipeline level.
type pipelineSinkOption interface {
	// PrepareSink runs before the first emission.
	PrepareSink(parentStep, step *StepInfo) error
	// OnSinkOutput runs every time something is written to the sink.
	OnSinkOutput(parentStep, step *StepInfo, iterationDuration, computationDuration time.Duration) error
	// AfterSink runs after the last emission.
	AfterSink(step *StepInfo, totalDuration time.Duration) error
}
