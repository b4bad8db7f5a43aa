// Package expr compiles the stage and reducer expressions given on the command line
// into pipeline callables.
//
// A stage expression sees the current value as self, its 1-based line number as i and
// its 0-based position as index. A boolean result selects or rejects the record, any
// other result replaces it. A reducer expression sees the collected values as self.
package expr

import (
	"context"
	"strings"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"

	"github.com/askiada/go-linepipe/pkg/pipeline/model"
)

const identitySource = "self"

// CompileStage compiles src into a stage. An empty source or self is the identity.
func CompileStage(src string) (model.Stage, error) {
	src = strings.TrimSpace(src)
	if src == "" || src == identitySource {
		return func(_ context.Context, _ any, _ int) (model.StageResult, error) {
			return model.Keep(), nil
		}, nil
	}

	prog, err := compile(src)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, value any, index int) (model.StageResult, error) {
		out, err := exprlang.Run(prog, map[string]any{
			"self":  value,
			"i":     index + 1,
			"index": index,
		})
		if err != nil {
			return model.StageResult{}, errors.Wrapf(err, "unable to evaluate %q", src)
		}

		return model.FromValue(out), nil
	}, nil
}

// CompileReducer compiles src into a reducer.
func CompileReducer(src string) (model.Reducer, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptyReducer
	}

	prog, err := compile(src)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, items []any) (any, error) {
		out, err := exprlang.Run(prog, map[string]any{"self": items})
		if err != nil {
			return nil, errors.Wrapf(err, "unable to evaluate %q", src)
		}

		return out, nil
	}, nil
}

func compile(src string) (*vm.Program, error) {
	opts := []exprlang.Option{
		exprlang.AllowUndefinedVariables(),
		// replaced by the lenient helpers of the same name
		exprlang.DisableBuiltin("sum"),
		exprlang.DisableBuiltin("mean"),
	}
	opts = append(opts, helpers()...)

	prog, err := exprlang.Compile(src, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to compile %q", src)
	}

	return prog, nil
}
