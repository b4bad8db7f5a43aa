package model

// Terminator is the byte sequence that closed a record in its input.
type Terminator string

const (
	// TerminatorNone marks a final record without any trailing terminator.
	TerminatorNone Terminator = ""
	// TerminatorLF is a unix line feed.
	TerminatorLF Terminator = "\n"
	// TerminatorCRLF is a windows carriage return followed by a line feed.
	TerminatorCRLF Terminator = "\r\n"
)

// String returns a printable name for the terminator.
func (t Terminator) String() string {
	switch t {
	case TerminatorLF:
		return "LF"
	case TerminatorCRLF:
		return "CRLF"
	default:
		return "none"
	}
}

// Record is one unit of input. The terminator is kept next to the value, never inside it.
type Record struct {
	Value      string
	Terminator Terminator
	Index      int
}

// Bytes returns the record as it appeared in the input.
func (r Record) Bytes() []byte {
	return []byte(r.Value + string(r.Terminator))
}
