package output

import (
	"bufio"
	"context"
	"io"
	"reflect"
	"strings"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

// Writer writes pipeline values to an underlying stream.
type Writer struct {
	bw   *bufio.Writer
	term model.Terminator
}

// Option configures a Writer.
type Option func(w *Writer)

// WithTerminator sets the terminator appended to values a stage changed.
// Unchanged records keep their own terminator.
func WithTerminator(term model.Terminator) Option {
	return func(w *Writer) {
		if term != model.TerminatorNone {
			w.term = term
		}
	}
}

// New creates a Writer on top of w.
func New(w io.Writer, opts ...Option) *Writer {
	wrt := &Writer{
		bw:   bufio.NewWriter(w),
		term: model.TerminatorLF,
	}
	for _, opt := range opts {
		opt(wrt)
	}

	return wrt
}

// Emit writes the value that survived the pipeline for rec and flushes it.
func (w *Writer) Emit(_ context.Context, value any, rec model.Record) error {
	if str, ok := value.(string); ok && str == rec.Value {
		_, err := w.bw.WriteString(str + string(rec.Terminator))
		if err != nil {
			return classify(err)
		}

		return w.flush()
	}

	err := w.writeValue(value)
	if err != nil {
		return err
	}

	return w.flush()
}

// EmitResult writes the value returned by a reducer and flushes it.
func (w *Writer) EmitResult(_ context.Context, value any) error {
	err := w.writeValue(value)
	if err != nil {
		return err
	}

	return w.flush()
}

// writeValue writes sequences one element per line and anything else on its own line.
func (w *Writer) writeValue(value any) error {
	if _, ok := value.(Inspected); ok || !isSequence(value) {
		return w.writeScalar(value)
	}

	rv := reflect.ValueOf(value)
	for i := 0; i < rv.Len(); i++ {
		err := w.writeScalar(rv.Index(i).Interface())
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeScalar(value any) error {
	str := Stringify(value)
	if !strings.HasSuffix(str, "\n") {
		str += string(w.term)
	}

	_, err := w.bw.WriteString(str)

	return classify(err)
}

func (w *Writer) flush() error {
	return classify(w.bw.Flush())
}
