// Package source produces the records consumed by a pipeline.
//
// LineReader pulls records lazily from a stream, one delimited line at a time, so a
// slow producer is observed as soon as each line is complete. Split cuts an in-memory
// content into records while keeping enough framing information to write it back
// byte for byte.
package source
