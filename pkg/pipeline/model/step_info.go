package model

// StepType is the role of a step in the pipeline.
type StepType string

const (
	SourceStepType  StepType = "source"
	StageStepType   StepType = "stage"
	ReducerStepType StepType = "reducer"
	SinkStepType    StepType = "sink"
)

// StepInfo describes a step to the pipeline options.
type StepInfo struct {
	Type  StepType
	Name  string
	Index int
}

var (
	StartStep = &StepInfo{Name: "start"}
	EndStep   = &StepInfo{Name: "end"}
)
