// Package log builds the logger writing linepipe diagnostics.
package log

import (
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-linepipe/internal/config"
)

// DebugEnv forces the debug level when set to a true value.
const DebugEnv = config.EnvPrefix + "_DEBUG"

// New returns a logger writing to wrt.
func New(cfg config.LogConfig, wrt io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse log level %s", cfg.Level)
	}

	if debug() {
		level = logrus.DebugLevel
	}

	l := logrus.New()
	l.SetOutput(wrt)
	l.SetLevel(level)

	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	}

	return l, nil
}

func debug() bool {
	enabled, err := strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		return false
	}

	return enabled
}
