package pipeline_test

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-linepipe/pkg/pipeline"
	"github.com/askiada/go-linepipe/pkg/pipeline/model"
	"github.com/askiada/go-linepipe/pkg/pipeline/output"
	"github.com/askiada/go-linepipe/pkg/pipeline/reduce"
	"github.com/askiada/go-linepipe/pkg/pipeline/source"
)

func TestAddStageNilPipe(t *testing.T) {
	t.Parallel()

	err := pipeline.AddStage(nil, "stage", identity)
	require.ErrorIs(t, err, pipeline.ErrPipelineMustBeSet)
}

func TestAddStageNilStage(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	err = pipeline.AddStage(pipe, "stage", nil)
	require.ErrorIs(t, err, pipeline.ErrStageMustBeSet)
}

func TestAddStageAfterReducer(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.SetReducer(pipe, "count", count))

	err = pipeline.AddStage(pipe, "stage", identity)
	require.ErrorIs(t, err, pipeline.ErrReducerAlreadySet)
}

func TestSetReducerTwice(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.SetReducer(pipe, "count", count))
	assert.True(t, pipe.Batch())

	err = pipeline.SetReducer(pipe, "count again", count)
	require.ErrorIs(t, err, pipeline.ErrReducerAlreadySet)
	require.ErrorIs(t, pipeline.SetReducer(nil, "count", count), pipeline.ErrPipelineMustBeSet)
	require.ErrorIs(t, pipeline.SetReducer(pipe, "nil", nil), pipeline.ErrReducerMustBeSet)
}

func TestRunNilSourceAndSink(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	require.ErrorIs(t, pipe.Run(context.Background(), nil, output.New(&strings.Builder{})), pipeline.ErrSourceMustBeSet)

	src, _ := newLogged(t, "a\n")
	require.ErrorIs(t, pipe.Run(context.Background(), src, nil), pipeline.ErrSinkMustBeSet)
	assert.True(t, src.closed)
}

func TestRunTwice(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	_, err = run(t, pipe, "a\n")
	require.NoError(t, err)

	_, err = run(t, pipe, "a\n")
	require.ErrorIs(t, err, pipeline.ErrPipelineAlreadyRun)
}

func TestIdentityRoundTrip(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		stages []model.Stage
	}{
		"no stage":       {},
		"identity stage": {stages: []model.Stage{identity}},
		"keep stage":     {stages: []model.Stage{contains("")}},
	}

	inputs := []string{
		" ab\tcd \n",
		"a\r\nb\nc",
		"\n\na\n\nb\n\n",
		"x\x00y\x1b\n",
		"",
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, input := range inputs {
				pipe, err := pipeline.New()
				require.NoError(t, err)

				for i, stg := range tc.stages {
					require.NoError(t, pipeline.AddStage(pipe, strconv.Itoa(i), stg))
				}

				got, err := run(t, pipe, input)
				require.NoError(t, err)
				assert.Equal(t, input, got)
			}
		})
	}
}

func TestFilterCount(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "select G", contains("G")))

	got, err := run(t, pipe, "rowA\nrowG\nrowG\n")
	require.NoError(t, err)
	assert.Equal(t, "rowG\nrowG\n", got)
}

func TestMapAndFilter(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "select abc", contains("abc")))
	require.NoError(t, pipeline.AddStage(pipe, "size", length))
	assert.Equal(t, 2, pipe.Len())

	got, err := run(t, pipe, "abc\nx\nabcdef\n")
	require.NoError(t, err)
	assert.Equal(t, "3\n6\n", got)
}

func TestStreamingEmitsBeforeNextPull(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "select even index", func(_ context.Context, _ any, index int) (model.StageResult, error) {
		return model.FromValue(index%2 == 0), nil
	}))

	src, sink := newLogged(t, "a\nb\nc\n")
	require.NoError(t, pipe.Run(context.Background(), src, sink))

	assert.Equal(t, []string{"pull 1", "emit a", "pull 2", "pull 3", "emit c", "pull 4"}, src.log.events)
	assert.True(t, src.closed)
}

func TestBatchReducesOnceAfterInput(t *testing.T) {
	t.Parallel()

	calls := 0

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.SetReducer(pipe, "count", func(ctx context.Context, items []any) (any, error) {
		calls++

		return count(ctx, items)
	}))

	src, sink := newLogged(t, "x\ny\nz\n")
	require.NoError(t, pipe.Run(context.Background(), src, sink))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"pull 1", "pull 2", "pull 3", "pull 4", "result 3"}, src.log.events)

	got, err := func() (string, error) {
		pipe, err := pipeline.New()
		require.NoError(t, err)
		require.NoError(t, pipeline.SetReducer(pipe, "count", count))

		return run(t, pipe, "x\ny\nz\n")
	}()
	require.NoError(t, err)
	assert.Equal(t, "3\n", got)
}

func TestBatchWithStages(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "keep all", contains("")))
	require.NoError(t, pipeline.SetReducer(pipe, "counted", func(_ context.Context, items []any) (any, error) {
		return reduce.Counted(reduce.Sorted(items)), nil
	}))

	got, err := run(t, pipe, "abc\n1200\nabcdef\n12\nabc\n")
	require.NoError(t, err)
	assert.Equal(t, "abc : 2\n12 : 1\n1200 : 1\nabcdef : 1\n", got)
}

func TestBatchInspectedResult(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "size", length))
	require.NoError(t, pipeline.SetReducer(pipe, "inspect", func(_ context.Context, items []any) (any, error) {
		return output.Inspect(items), nil
	}))

	got, err := run(t, pipe, "abc\nab\na")
	require.NoError(t, err)
	assert.Equal(t, "[3, 2, 1]\n", got)
}

func TestReducerError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.SetReducer(pipe, "mean", func(_ context.Context, items []any) (any, error) {
		return reduce.Mean(items, nil)
	}))

	got, err := run(t, pipe, "")
	require.ErrorIs(t, err, reduce.ErrEmptyCollection)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "mean", stageErr.Stage)
	assert.Equal(t, -1, stageErr.Index)
	assert.Empty(t, got)
}

func TestReducerPanic(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.SetReducer(pipe, "boom", func(context.Context, []any) (any, error) {
		panic("boom")
	}))

	_, err = run(t, pipe, "a\n")

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Contains(t, err.Error(), "boom")
}

func TestStageErrorStopsPipeline(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "fail on b", func(_ context.Context, value any, _ int) (model.StageResult, error) {
		if value == "b" {
			return model.StageResult{}, assert.AnError
		}

		return model.Keep(), nil
	}))

	src, sink := newLogged(t, "a\nb\nc\n")
	err = pipe.Run(context.Background(), src, sink)
	require.ErrorIs(t, err, assert.AnError)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "fail on b", stageErr.Stage)
	assert.Equal(t, 1, stageErr.Index)
	assert.Equal(t, []any{"a"}, sink.values)
	assert.Equal(t, 2, src.pulls)
	assert.True(t, src.closed)
}

func TestStagePanic(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "bad cast", func(_ context.Context, value any, _ int) (model.StageResult, error) {
		return model.Replace(value.(int)), nil
	}))

	_, err = run(t, pipe, "a\n")

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Contains(t, err.Error(), "panic")
}

func TestDownstreamClosedStopsPulling(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		closeAt int
	}{
		"first record":  {closeAt: 0},
		"after one":     {closeAt: 1},
		"after several": {closeAt: 5},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipe, err := pipeline.New()
			require.NoError(t, err)
			require.NoError(t, pipeline.AddStage(pipe, "size", length))

			src, sink := newLogged(t, strings.Repeat("hello\n", 10000))
			sink.closeAt = tc.closeAt
			if tc.closeAt == 0 {
				sink.closeAt = -1
			}

			err = pipe.Run(context.Background(), src, &closingSink{sink})
			require.Error(t, err)
			assert.True(t, pipeline.IsDownstreamClosed(err))
			assert.Equal(t, tc.closeAt+1, src.pulls)
			assert.Len(t, sink.values, tc.closeAt)
			assert.True(t, src.closed)
		})
	}
}

// closingSink closes right away when closeAt is negative.
type closingSink struct {
	*loggedSink
}

func (s *closingSink) Emit(ctx context.Context, value any, rec model.Record) error {
	if s.closeAt < 0 {
		return output.ErrDownstreamClosed
	}

	return s.loggedSink.Emit(ctx, value, rec)
}

func TestDownstreamClosedOnRealPipe(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	writer := newClosedPipe(t)

	err = pipe.Run(context.Background(), linesSource(t, "a\nb\n"), output.New(writer))
	assert.True(t, pipeline.IsDownstreamClosed(err))
}

func TestSourceError(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	err = pipe.Run(context.Background(), failingSource{}, output.New(&strings.Builder{}))
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, pipeline.IsDownstreamClosed(err))
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, sink := newLogged(t, "a\n")
	err = pipe.Run(ctx, src, sink)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.pulls)
}

func TestOptionsHooks(t *testing.T) {
	t.Parallel()

	opt := &recordingOption{}
	pipe, err := pipeline.New(opt)
	require.NoError(t, err)
	require.NoError(t, pipeline.AddStage(pipe, "first", identity))
	require.NoError(t, pipeline.AddStage(pipe, "second", contains("a")))
	require.NoError(t, pipeline.SetReducer(pipe, "count", count))

	got, err := run(t, pipe, "a\nb\n")
	require.NoError(t, err)
	assert.Equal(t, "1\n", got)
	assert.Equal(t, []string{
		"new",
		"stage start->first",
		"stage first->second",
		"reducer second->count",
		"sink count->sink",
		"reduced count 1",
		"after sink",
		"finish",
	}, opt.calls)
	assert.Equal(t, 4, opt.stageCalls)
}

func TestOptionFinishError(t *testing.T) {
	t.Parallel()

	opt := &recordingOption{finishErr: assert.AnError}
	pipe, err := pipeline.New(opt)
	require.NoError(t, err)

	_, err = run(t, pipe, "a\n")
	require.ErrorIs(t, err, assert.AnError)
}

func TestOrderPreservation(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(42)) //nolint:gosec

	for iter := 0; iter < 200; iter++ {
		total := rnd.Intn(50)
		lines := make([]string, total)
		for i := range lines {
			lines[i] = strconv.Itoa(i)
		}

		pipe, err := pipeline.New()
		require.NoError(t, err)

		stages := rnd.Intn(5)
		for s := 0; s < stages; s++ {
			modulo := rnd.Intn(4) + 1
			if rnd.Intn(2) == 0 {
				require.NoError(t, pipeline.AddStage(pipe, "filter", func(_ context.Context, _ any, index int) (model.StageResult, error) {
					return model.FromValue(index%modulo != 0), nil
				}))

				continue
			}

			require.NoError(t, pipeline.AddStage(pipe, "map", func(_ context.Context, value any, _ int) (model.StageResult, error) {
				return model.Replace(value.(string) + "!"), nil
			}))
		}

		records := make([]model.Record, total)
		for i, line := range lines {
			records[i] = model.Record{Value: line, Terminator: model.TerminatorLF, Index: i}
		}

		sink := &loggedSink{log: &eventLog{}}
		require.NoError(t, pipe.Run(context.Background(), source.NewSliceSource(records), sink))

		last := -1
		for _, value := range sink.values {
			idx, err := strconv.Atoi(strings.TrimRight(value.(string), "!"))
			require.NoError(t, err)
			assert.Greater(t, idx, last)
			last = idx
		}
	}
}
