package source

import (
	"bytes"
	"context"
	"strings"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

// Framing is what must be known about a content to rebuild it from its records.
type Framing struct {
	Terminator model.Terminator
	Trailing   bool
}

// DetectTerminator returns the terminator used by most lines of content.
// A content without any line feed is considered LF.
func DetectTerminator(content []byte) model.Terminator {
	crlf := bytes.Count(content, []byte(model.TerminatorCRLF))
	lf := bytes.Count(content, []byte(model.TerminatorLF)) - crlf

	if crlf > 0 && crlf >= lf {
		return model.TerminatorCRLF
	}

	return model.TerminatorLF
}

// Split cuts content into records using its dominant terminator.
// Every empty line is kept at its position; only the empty remainder after a final
// terminator is not a record, which is recorded in Framing.Trailing.
func Split(content []byte) ([]model.Record, Framing) {
	framing := Framing{Terminator: DetectTerminator(content)}
	if len(content) == 0 {
		return nil, framing
	}

	term := string(framing.Terminator)
	text := string(content)

	parts := strings.Split(text, term)
	if strings.HasSuffix(text, term) {
		framing.Trailing = true
		parts = parts[:len(parts)-1]
	}

	records := make([]model.Record, len(parts))
	for i, part := range parts {
		records[i] = model.Record{Value: part, Terminator: framing.Terminator, Index: i}
	}

	if !framing.Trailing {
		records[len(records)-1].Terminator = model.TerminatorNone
	}

	return records, framing
}

// SliceSource iterates over records already in memory.
type SliceSource struct {
	records []model.Record
	idx     int
}

// NewSliceSource creates a source over records.
func NewSliceSource(records []model.Record) *SliceSource {
	return &SliceSource{records: records}
}

// Next returns the next record.
func (s *SliceSource) Next(_ context.Context) (model.Record, bool, error) {
	if s.idx >= len(s.records) {
		return model.Record{}, false, nil
	}

	rec := s.records[s.idx]
	s.idx++

	return rec, true, nil
}

// Close is a no-op.
func (s *SliceSource) Close() error {
	return nil
}
