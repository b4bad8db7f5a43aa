package model

import "context"

// ResultKind tells how the executor must interpret a StageResult.
type ResultKind int

const (
	// FilterResult keeps or drops the record without touching its value.
	FilterResult ResultKind = iota
	// ReplaceResult replaces the current value of the record.
	ReplaceResult
)

// StageResult is the outcome of a stage for one record.
type StageResult struct {
	Kind  ResultKind
	Keep  bool
	Value any
}

// Keep returns a filter result keeping the record unchanged.
func Keep() StageResult {
	return StageResult{Kind: FilterResult, Keep: true}
}

// Drop returns a filter result removing the record.
func Drop() StageResult {
	return StageResult{Kind: FilterResult}
}

// Replace returns a result replacing the current value with v.
func Replace(v any) StageResult {
	return StageResult{Kind: ReplaceResult, Value: v}
}

// FromValue dispatches a dynamically typed return value: a bool is a filter,
// anything else replaces the current value.
func FromValue(v any) StageResult {
	if keep, ok := v.(bool); ok {
		return StageResult{Kind: FilterResult, Keep: keep}
	}

	return Replace(v)
}

// Stage is one step of the transformation chain. It receives the current value of
// the record and the record position in the input.
type Stage func(ctx context.Context, value any, index int) (StageResult, error)

// Reducer receives every surviving value, in input order, and returns the final output.
type Reducer func(ctx context.Context, items []any) (any, error)
