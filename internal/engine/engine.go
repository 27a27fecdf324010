// Package engine is the boundary to the external inference runtime. The
// core treats "generate tokens against loaded model X" as a capability
// supplied here; it never reaches into tokenization or kernel internals.
package engine

import (
	"context"
	"errors"

	"sumbench/pkg/types"
)

// ProgressFunc receives load progress fractions in [0,1].
type ProgressFunc func(fraction float64)

// Engine loads model weights into accelerator memory and hands back a
// Runtime for generation. Implementations must emit progress via
// onProgress with non-decreasing fractions and honor ctx cancellation
// between progress steps.
type Engine interface {
	Load(ctx context.Context, spec types.ModelSpec, path string, onProgress ProgressFunc) (Runtime, error)
}

// Runtime is a loaded model's execution context. It is not reentrant:
// callers must serialize Generate calls.
type Runtime interface {
	// Generate runs autoregressive decoding until the token budget is
	// exhausted or a stop sequence is emitted, invoking onToken per token.
	Generate(ctx context.Context, prompt string, params Params, onToken func(string) error) (Final, error)
	// MemoryMB reports the measured footprint of the loaded weights.
	MemoryMB() int
	Close() error
}

// Params captures generation parameters passed to the runtime.
// Temperature 0 selects greedy decoding.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Stop        []string
	Threads     int
}

// Final summarizes a completed generation.
type Final struct {
	Content         string
	TokensGenerated int
	FinishReason    string
}

// unavailableError signals that no real runtime is compiled in.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an engine-unavailable error.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// Built reports whether a real inference runtime was compiled in.
func Built() bool { return llamaBuilt }

// IsUnavailable reports whether err indicates a missing inference runtime.
func IsUnavailable(err error) bool {
	var e unavailableError
	return errors.As(err, &e)
}
