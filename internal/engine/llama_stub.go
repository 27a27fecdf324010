//go:build !llama

package engine

import (
	"context"

	"sumbench/pkg/types"
)

// This file is compiled when the 'llama' build tag is NOT set, keeping
// default builds and CI CGO-free. The stub satisfies Engine but refuses
// to load models; benchmarks against a mocked runtime would be
// meaningless, so there is no fallback behavior.

var llamaBuilt = false

type llamaEngineStub struct{}

// NewLlamaEngine returns a stub that fails fast at load time.
func NewLlamaEngine(ctxSize, threads int) Engine {
	return llamaEngineStub{}
}

func (llamaEngineStub) Load(ctx context.Context, spec types.ModelSpec, path string, onProgress ProgressFunc) (Runtime, error) {
	return nil, ErrUnavailable("llama support not built (missing 'llama' build tag)")
}
