//go:build llama

package engine

import (
	"context"
	"errors"
	"os"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"sumbench/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// LlamaEngine runs models in-process via go-llama.cpp.
type LlamaEngine struct {
	ctxSize int
	threads int
}

// NewLlamaEngine constructs the in-process engine. ctxSize/threads <= 0
// fall back to small defaults.
func NewLlamaEngine(ctxSize, threads int) Engine {
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	if threads <= 0 {
		threads = 4
	}
	return &LlamaEngine{ctxSize: ctxSize, threads: threads}
}

func (e *LlamaEngine) Load(ctx context.Context, spec types.ModelSpec, path string, onProgress ProgressFunc) (Runtime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if onProgress != nil {
		onProgress(0)
	}
	m, err := llama.New(path, llama.SetContext(e.ctxSize))
	if err != nil {
		return nil, err
	}
	if onProgress != nil {
		onProgress(1)
	}
	return &llamaRuntime{model: m, threads: e.threads, footprintMB: fileSizeMB(path)}, nil
}

type llamaRuntime struct {
	model       *llama.LLama
	threads     int
	footprintMB int
}

func (r *llamaRuntime) Generate(ctx context.Context, prompt string, params Params, onToken func(string) error) (Final, error) {
	if r.model == nil {
		return Final{}, errors.New("llama model not initialized")
	}
	tokens := 0
	r.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		tokens++
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return false
			}
		}
		return true
	})
	threads := params.Threads
	if threads <= 0 {
		threads = r.threads
	}
	po := []llama.PredictOption{
		llama.SetTokens(maxInt(1, params.MaxTokens)),
		llama.SetThreads(maxInt(1, threads)),
		llama.SetTemperature(float32(params.Temperature)),
	}
	if params.TopP > 0 {
		po = append(po, llama.SetTopP(float32(params.TopP)))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	text, err := r.model.Predict(prompt, po...)
	if err != nil {
		if ctx.Err() != nil {
			return Final{}, ctx.Err()
		}
		return Final{}, err
	}
	return Final{Content: text, TokensGenerated: tokens, FinishReason: "stop"}, nil
}

func (r *llamaRuntime) MemoryMB() int { return r.footprintMB }

func (r *llamaRuntime) Close() error {
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}

func fileSizeMB(path string) int {
	fi, err := os.Stat(path)
	if err != nil {
		return 1
	}
	mb := int(fi.Size() / (1024 * 1024))
	if mb <= 0 {
		mb = 1
	}
	return mb
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
