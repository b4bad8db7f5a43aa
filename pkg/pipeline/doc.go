// Package pipeline provides a line oriented pipeline executor.
//
// A pipeline is an ordered list of stages applied to every record pulled from a Source.
// A stage either filters the record, by returning a keep or drop result, or replaces its
// current value. A record dropped by a stage is not seen by the following stages.
//
// Without a reducer the pipeline streams: each surviving value is written to the Sink,
// and flushed, before the next record is even requested from the Source. This keeps the
// output in step with slow or never ending inputs.
//
// With a reducer the pipeline collects every surviving value, in input order, and calls
// the reducer once when the Source is exhausted. Its return value is the only output.
//
// When the Sink reports that the downstream consumer stopped reading, the pipeline stops
// pulling records and returns an error for which IsDownstreamClosed is true. This is a
// normal way for a run to end, not a failure.
package pipeline
