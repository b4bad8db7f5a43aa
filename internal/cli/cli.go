// Package cli runs linepipe from command line arguments.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-linepipe/internal/config"
	"github.com/askiada/go-linepipe/internal/expr"
	"github.com/askiada/go-linepipe/internal/log"
	"github.com/askiada/go-linepipe/pkg/pipeline"
	"github.com/askiada/go-linepipe/pkg/pipeline/drawer"
	"github.com/askiada/go-linepipe/pkg/pipeline/inplace"
	"github.com/askiada/go-linepipe/pkg/pipeline/measure"
	"github.com/askiada/go-linepipe/pkg/pipeline/model"
	"github.com/askiada/go-linepipe/pkg/pipeline/output"
	"github.com/askiada/go-linepipe/pkg/pipeline/source"
)

// Version is the version printed by -v.
var Version = "0.1.0"

// Exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

var ErrInterrupted = errors.New("interrupted")

const usageHeader = `Usage:
  linepipe [flags] [STAGE ...] [REDUCER]

Every line read from stdin goes through each STAGE expression, self being the line,
i its line number and index its position. A boolean result selects or rejects the
line, any other result replaces it. With a REDUCER, self is the list of selected lines
and the result is printed once.

Flags:
`

// Usage returns the help text.
func Usage() string {
	return usageHeader + config.Usage()
}

// Streams are the standard streams of a run.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Main runs linepipe with args, without the program name, and returns the exit status.
func Main(ctx context.Context, args []string, streams Streams) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(streams.Stderr, "linepipe: %v\nRun 'linepipe --help' for usage.\n", err)

		return ExitUsage
	}

	if cfg.Version {
		fmt.Fprintln(streams.Stdout, Version)

		return ExitOK
	}

	if cfg.Help || cfg.Empty() {
		fmt.Fprint(streams.Stdout, Usage())

		return ExitOK
	}

	logger, err := log.New(cfg.Log, streams.Stderr)
	if err != nil {
		fmt.Fprintf(streams.Stderr, "linepipe: %v\n", err)

		return ExitUsage
	}

	if cfg.Measure && logger.GetLevel() < logrus.InfoLevel {
		logger.SetLevel(logrus.InfoLevel)
	}

	entry := logger.WithField("run_id", xid.New().String())

	err = run(ctx, cfg, entry, streams)

	switch {
	case err == nil:
		entry.Debug("run finished")

		return ExitOK
	case pipeline.IsDownstreamClosed(err):
		entry.Debug("output closed, stopped reading input")

		return ExitOK
	case errors.Is(err, ErrInterrupted):
		entry.WithError(err).Debug("run stopped")

		return ExitInterrupted
	default:
		entry.WithError(err).Error("run failed")

		return ExitFailure
	}
}

func run(ctx context.Context, cfg *config.Config, entry *logrus.Entry, streams Streams) error {
	var msr measure.Measure

	opts := []model.PipelineOption{&traceOption{entry: entry}}

	if cfg.Measure || cfg.Draw != "" {
		msr = measure.NewDefaultMeasure()
		opts = append(opts, measure.PipelineMeasure(msr))
	}

	if cfg.Draw != "" {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDotDrawer(cfg.Draw), msr))
	}

	pipe, err := build(cfg, opts...)
	if err != nil {
		return err
	}

	entry.WithFields(logrus.Fields{
		"stages":  pipe.Len(),
		"batch":   pipe.Batch(),
		"inplace": cfg.InplaceEdit,
	}).Debug("pipeline ready")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		if cfg.InplaceEdit != "" {
			return inplace.Rewrite(gctx, cfg.InplaceEdit, pipe)
		}

		src, err := source.NewLineReader(streams.Stdin)
		if err != nil {
			return errors.Wrap(err, "unable to read stdin")
		}

		return pipe.Run(gctx, src, output.New(streams.Stdout))
	})

	g.Go(func() error {
		return watchSignals(gctx, entry, streams.Stdin)
	})

	err = g.Wait()
	if err != nil {
		return err
	}

	if cfg.Measure {
		logReport(entry, msr)
	}

	return nil
}

// build compiles the expressions of cfg into a pipeline.
func build(cfg *config.Config, opts ...model.PipelineOption) (*pipeline.Pipeline, error) {
	pipe, err := pipeline.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create pipeline")
	}

	for i, src := range cfg.Stages {
		stage, err := expr.CompileStage(src)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to compile stage %d", i+1)
		}

		err = pipeline.AddStage(pipe, fmt.Sprintf("stage %d: %s", i+1, src), stage)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add stage %d", i+1)
		}
	}

	if !cfg.HasReducer {
		return pipe, nil
	}

	reducer, err := expr.CompileReducer(cfg.Reducer)
	if err != nil {
		return nil, errors.Wrap(err, "unable to compile reducer")
	}

	err = pipeline.SetReducer(pipe, "reducer: "+cfg.Reducer, reducer)
	if err != nil {
		return nil, errors.Wrap(err, "unable to set reducer")
	}

	return pipe, nil
}

// watchSignals returns ErrInterrupted on SIGINT or SIGTERM and closes stdin so a pending
// read returns. SIGPIPE is caught so a write to a closed stdout fails with EPIPE instead
// of killing the process.
func watchSignals(ctx context.Context, entry *logrus.Entry, stdin io.Reader) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGPIPE)

	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sigs:
			if sig == syscall.SIGPIPE {
				entry.Debug("received SIGPIPE")

				continue
			}

			if closer, ok := stdin.(io.Closer); ok {
				_ = closer.Close()
			}

			return errors.Wrapf(ErrInterrupted, "received %s", sig)
		}
	}
}

func logReport(entry *logrus.Entry, msr measure.Measure) {
	for _, report := range measure.Report(msr) {
		fields := logrus.Fields{
			"step":  report.Name,
			"avg":   report.Average.String(),
			"total": report.Total.String(),
		}

		for outcome, n := range report.Outcomes {
			fields[string(outcome)] = n
		}

		entry.WithFields(fields).Info("step measured")
	}
}
