// Package reduce provides the helpers available to a reduction stage.
//
// All helpers work on a Collection, the ordered values that survived the pipeline, and
// never modify it.
package reduce
