// Package model provides the data structures shared by the pipeline packages.
// It defines the records flowing through a pipeline, the stages applied to them,
// the description of every step and the options that can observe a run.
package model
