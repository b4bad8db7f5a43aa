// Package inplace rewrites a file with the output of a pipeline.
//
// The file is read entirely, split with its dominant terminator and run through the
// pipeline. The output uses the same terminator and keeps the presence or absence of a
// final terminator, so a pipeline that changes nothing leaves the file byte identical.
package inplace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline"
	"github.com/askiada/go-linepipe/pkg/pipeline/output"
	"github.com/askiada/go-linepipe/pkg/pipeline/source"
)

var ErrPathMustBeSet = errors.New("path must be set")

// Rewrite runs pipe over the content of path and replaces the content with the output.
// Nothing is written if path cannot be read or if the pipeline fails.
func Rewrite(ctx context.Context, path string, pipe *pipeline.Pipeline) error {
	if pipe == nil {
		return pipeline.ErrPipelineMustBeSet
	}

	if path == "" {
		return ErrPathMustBeSet
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "unable to read file")
	}

	out, err := Transform(ctx, content, pipe)
	if err != nil {
		return err
	}

	return writeFile(path, out)
}

// Transform runs pipe over content and returns the new content.
func Transform(ctx context.Context, content []byte, pipe *pipeline.Pipeline) ([]byte, error) {
	records, framing := source.Split(content)

	buf := &bytes.Buffer{}

	err := pipe.Run(ctx, source.NewSliceSource(records), output.New(buf, output.WithTerminator(framing.Terminator)))
	if err != nil {
		return nil, errors.Wrap(err, "unable to run pipeline")
	}

	out := buf.Bytes()
	if !framing.Trailing {
		out = bytes.TrimSuffix(out, []byte(framing.Terminator))
	}

	return out, nil
}

// writeFile replaces path atomically, keeping its permissions.
func writeFile(path string, content []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "unable to stat file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(content)
	if err != nil {
		_ = tmp.Close()

		return errors.Wrapf(err, "unable to write %s", tmp.Name())
	}

	err = tmp.Chmod(info.Mode().Perm())
	if err != nil {
		_ = tmp.Close()

		return errors.Wrapf(err, "unable to set permissions of %s", tmp.Name())
	}

	err = tmp.Close()
	if err != nil {
		return errors.Wrapf(err, "unable to close %s", tmp.Name())
	}

	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return errors.Wrapf(err, "unable to replace %s", path)
	}

	return nil
}
