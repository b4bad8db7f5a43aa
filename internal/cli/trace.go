package cli

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/askiada/go-linepipe/pkg/pipeline"
	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

// traceOption logs the steps of the pipeline at debug level and every stage output at
// trace level.
type traceOption struct {
	pipeline.BaseOption
	entry *logrus.Entry
}

func (to *traceOption) PrepareStage(parentStep, step *model.StepInfo) error {
	to.entry.WithFields(logrus.Fields{"step": step.Name, "after": parentStep.Name}).Debug("stage added")

	return nil
}

func (to *traceOption) PrepareReducer(parentStep, step *model.StepInfo) error {
	to.entry.WithFields(logrus.Fields{"step": step.Name, "after": parentStep.Name}).Debug("reducer set")

	return nil
}

func (to *traceOption) OnStageOutput(step *model.StepInfo, result model.StageResult, elapsed time.Duration) error {
	if !to.entry.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return nil
	}

	fields := logrus.Fields{"step": step.Name, "elapsed": elapsed.String()}

	if result.Kind == model.ReplaceResult {
		fields["value"] = result.Value
	} else {
		fields["keep"] = result.Keep
	}

	to.entry.WithFields(fields).Trace("stage output")

	return nil
}

func (to *traceOption) AfterReduce(step *model.StepInfo, items int, elapsed time.Duration) error {
	to.entry.WithFields(logrus.Fields{"step": step.Name, "items": items, "elapsed": elapsed.String()}).Debug("reduced")

	return nil
}
