package source

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

// LineReader is a forward only iterator over the lines of a stream.
type LineReader struct {
	rd     *bufio.Reader
	closer io.Closer
	index  int
	done   bool
}

// NewLineReader creates a line reader. If r is an io.Closer it is closed by Close.
func NewLineReader(r io.Reader) (*LineReader, error) {
	if r == nil {
		return nil, ErrReaderMustBeSet
	}

	lr := &LineReader{rd: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		lr.closer = c
	}

	return lr, nil
}

// Next returns the next record. It returns false once the stream is exhausted.
// It blocks until a full line, or the end of the stream, is available.
func (lr *LineReader) Next(ctx context.Context) (model.Record, bool, error) {
	if lr.done {
		return model.Record{}, false, nil
	}

	if err := ctx.Err(); err != nil {
		return model.Record{}, false, errors.Wrap(err, "unable to read next line")
	}

	line, err := lr.rd.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return model.Record{}, false, errors.Wrapf(err, "unable to read line %d", lr.index+1)
	}

	if err != nil {
		lr.done = true
		if line == "" {
			return model.Record{}, false, nil
		}
	}

	rec := model.Record{Index: lr.index, Value: line, Terminator: model.TerminatorNone}

	switch {
	case strings.HasSuffix(line, string(model.TerminatorCRLF)):
		rec.Value = strings.TrimSuffix(line, string(model.TerminatorCRLF))
		rec.Terminator = model.TerminatorCRLF
	case strings.HasSuffix(line, string(model.TerminatorLF)):
		rec.Value = strings.TrimSuffix(line, string(model.TerminatorLF))
		rec.Terminator = model.TerminatorLF
	}

	lr.index++

	return rec, true, nil
}

// Close releases the underlying stream when it is closable.
func (lr *LineReader) Close() error {
	lr.done = true
	if lr.closer == nil {
		return nil
	}

	return errors.Wrap(lr.closer.Close(), "unable to close line reader")
}
