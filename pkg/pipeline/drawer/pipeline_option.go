package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline"
	"github.com/askiada/go-linepipe/pkg/pipeline/measure"
	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

type pipelineDrawer struct {
	pipeline.BaseOption
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) addLinkedStep(parentStep, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	return pd.AddLink(parentStep.Name, step.Name)
}

func (pd *pipelineDrawer) PrepareStage(parentStep, step *model.StepInfo) error {
	return pd.addLinkedStep(parentStep, step)
}

func (pd *pipelineDrawer) PrepareReducer(parentStep, step *model.StepInfo) error {
	return pd.addLinkedStep(parentStep, step)
}

func (pd *pipelineDrawer) PrepareSink(parentStep, step *model.StepInfo) error {
	err := pd.addLinkedStep(parentStep, step)
	if err != nil {
		return err
	}

	return pd.AddLink(step.Name, model.EndStep.Name)
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.SetTotalTime(model.EndStep.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}

		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns an option drawing the pipeline when it finishes. When msr is
// not nil its metrics are added to the graph, msr must then be filled by the pipeline too.
func PipelineDrawer(drawer Drawer, msr measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: msr, startTime: time.Now()}
}
