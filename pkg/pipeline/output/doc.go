// Package output serializes pipeline values to a writer.
//
// Scalars are written on one line, sequences one element per line and values built with
// Inspect or Dump as a single block. Every emission is flushed, so a consumer reading the
// other end of a pipe sees results as they are produced. A consumer that went away is
// reported as ErrDownstreamClosed rather than as a write failure.
package output
