package pipeline_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linepipe/pkg/pipeline"
	"github.com/askiada/go-linepipe/pkg/pipeline/model"
	"github.com/askiada/go-linepipe/pkg/pipeline/output"
	"github.com/askiada/go-linepipe/pkg/pipeline/source"
)

// eventLog records pulls and emissions in the order they happen.
type eventLog struct {
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

// loggedSource wraps a source and logs every pull.
type loggedSource struct {
	pipeline.Source
	log    *eventLog
	pulls  int
	closed bool
}

func (s *loggedSource) Next(ctx context.Context) (model.Record, bool, error) {
	s.pulls++
	s.log.add("pull %d", s.pulls)

	return s.Source.Next(ctx)
}

func (s *loggedSource) Close() error {
	s.closed = true

	return s.Source.Close()
}

// loggedSink records emissions and can simulate a consumer going away.
type loggedSink struct {
	log     *eventLog
	values  []any
	results []any
	closeAt int
}

func (s *loggedSink) Emit(_ context.Context, value any, _ model.Record) error {
	if s.closeAt > 0 && len(s.values) == s.closeAt {
		return output.ErrDownstreamClosed
	}

	s.values = append(s.values, value)
	s.log.add("emit %v", value)

	return nil
}

func (s *loggedSink) EmitResult(_ context.Context, value any) error {
	s.results = append(s.results, value)
	s.log.add("result %v", value)

	return nil
}

type failingSource struct{}

func (failingSource) Next(context.Context) (model.Record, bool, error) {
	return model.Record{}, false, assert.AnError
}

func (failingSource) Close() error { return nil }

func linesSource(t *testing.T, input string) *source.LineReader {
	t.Helper()

	lr, err := source.NewLineReader(strings.NewReader(input))
	require.NoError(t, err)

	return lr
}

func newLogged(t *testing.T, input string) (*loggedSource, *loggedSink) {
	t.Helper()

	log := &eventLog{}

	return &loggedSource{Source: linesSource(t, input), log: log}, &loggedSink{log: log}
}

func run(t *testing.T, pipe *pipeline.Pipeline, input string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	err := pipe.Run(context.Background(), linesSource(t, input), output.New(buf))

	return buf.String(), err
}

func contains(sub string) model.Stage {
	return func(_ context.Context, value any, _ int) (model.StageResult, error) {
		return model.FromValue(strings.Contains(value.(string), sub)), nil
	}
}

func length(_ context.Context, value any, _ int) (model.StageResult, error) {
	return model.Replace(len(value.(string))), nil
}

func identity(_ context.Context, value any, _ int) (model.StageResult, error) {
	return model.Replace(value), nil
}

func count(_ context.Context, items []any) (any, error) {
	return len(items), nil
}

// recordingOption records every hook call.
type recordingOption struct {
	pipeline.BaseOption
	calls      []string
	finishErr  error
	stageCalls int
	durations  []time.Duration
}

func (o *recordingOption) New() error {
	o.calls = append(o.calls, "new")

	return nil
}

func (o *recordingOption) PrepareStage(parent, step *model.StepInfo) error {
	o.calls = append(o.calls, "stage "+parent.Name+"->"+step.Name)

	return nil
}

func (o *recordingOption) PrepareReducer(parent, step *model.StepInfo) error {
	o.calls = append(o.calls, "reducer "+parent.Name+"->"+step.Name)

	return nil
}

func (o *recordingOption) PrepareSink(parent, step *model.StepInfo) error {
	o.calls = append(o.calls, "sink "+parent.Name+"->"+step.Name)

	return nil
}

func (o *recordingOption) OnStageOutput(_ *model.StepInfo, _ model.StageResult, d time.Duration) error {
	o.stageCalls++
	o.durations = append(o.durations, d)

	return nil
}

func (o *recordingOption) AfterReduce(step *model.StepInfo, items int, _ time.Duration) error {
	o.calls = append(o.calls, fmt.Sprintf("reduced %s %d", step.Name, items))

	return nil
}

func (o *recordingOption) AfterSink(step *model.StepInfo, _ time.Duration) error {
	o.calls = append(o.calls, "after "+step.Name)

	return nil
}

func (o *recordingOption) Finish() error {
	o.calls = append(o.calls, "finish")

	return o.finishErr
}

// newClosedPipe returns the write end of a pipe whose read end is already closed.
func newClosedPipe(t *testing.T) *os.File {
	t.Helper()

	reader, writer, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, reader.Close())

	t.Cleanup(func() {
		_ = writer.Close()
	})

	return writer
}
