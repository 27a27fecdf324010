package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sumbench/internal/engine"
	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

// spec builds a catalog entry for tests; footprints are tiny so budget
// tests can use round numbers.
func spec(id string, size types.SizeClass, gb float64) types.ModelSpec {
	return types.ModelSpec{
		ID:         id,
		Name:       id,
		Size:       size,
		ExpectedGB: gb,
		WeightFile: filepath.Base(id) + ".gguf",
	}
}

// testRegistry materializes weight files for every spec in a temp dir.
func testRegistry(t *testing.T, specs ...types.ModelSpec) *registry.Registry {
	t.Helper()
	dir := t.TempDir()
	for _, s := range specs {
		if err := os.WriteFile(filepath.Join(dir, s.WeightFile), []byte("weights"), 0o644); err != nil {
			t.Fatalf("write weight file: %v", err)
		}
	}
	reg, err := registry.New(specs, dir)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

// fakeRuntime is a controllable engine.Runtime.
type fakeRuntime struct {
	content string
	tokens  int
	memMB   int
	genErr  error
	// blockOnCtx makes Generate wait for context cancellation, to
	// exercise unload-while-generating.
	blockOnCtx bool

	mu         sync.Mutex
	closed     bool
	concurrent int
	maxConc    int
	lastParams engine.Params
}

func (r *fakeRuntime) Generate(ctx context.Context, prompt string, params engine.Params, onToken func(string) error) (engine.Final, error) {
	r.mu.Lock()
	r.concurrent++
	if r.concurrent > r.maxConc {
		r.maxConc = r.concurrent
	}
	r.lastParams = params
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.concurrent--
		r.mu.Unlock()
	}()

	if r.blockOnCtx {
		<-ctx.Done()
		return engine.Final{}, ctx.Err()
	}
	if r.genErr != nil {
		return engine.Final{}, r.genErr
	}
	content := r.content
	if content == "" {
		content = "a short summary"
	}
	tokens := r.tokens
	if tokens == 0 {
		tokens = 4
	}
	return engine.Final{Content: content, TokensGenerated: tokens, FinishReason: "stop"}, nil
}

func (r *fakeRuntime) MemoryMB() int { return r.memMB }

func (r *fakeRuntime) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

func (r *fakeRuntime) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// fakeEngine loads fakeRuntimes with configurable pacing and failure.
type fakeEngine struct {
	stepDelay time.Duration
	steps     int
	memMB     int

	mu       sync.Mutex
	loadErr  error
	loads    int
	inflight int
	maxConc  int
	runtimes map[string]*fakeRuntime
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{steps: 4, memMB: 100, runtimes: make(map[string]*fakeRuntime)}
}

func (e *fakeEngine) setLoadErr(err error) {
	e.mu.Lock()
	e.loadErr = err
	e.mu.Unlock()
}

func (e *fakeEngine) loadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads
}

func (e *fakeEngine) maxConcurrent() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxConc
}

func (e *fakeEngine) runtime(id string) *fakeRuntime {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runtimes[id]
}

func (e *fakeEngine) Load(ctx context.Context, s types.ModelSpec, path string, onProgress engine.ProgressFunc) (engine.Runtime, error) {
	e.mu.Lock()
	e.loads++
	e.inflight++
	if e.inflight > e.maxConc {
		e.maxConc = e.inflight
	}
	err := e.loadErr
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inflight--
		e.mu.Unlock()
	}()

	for i := 1; i <= e.steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.stepDelay):
		}
		if onProgress != nil {
			onProgress(float64(i) / float64(e.steps))
		}
	}
	if err != nil {
		return nil, err
	}
	rt := &fakeRuntime{memMB: e.memMB}
	e.mu.Lock()
	e.runtimes[s.ID] = rt
	e.mu.Unlock()
	return rt, nil
}

func newTestManager(t *testing.T, eng *fakeEngine, budgetMB int, specs ...types.ModelSpec) (*Manager, *MemoryPublisher) {
	t.Helper()
	pub := NewMemoryPublisher()
	m := NewWithConfig(Config{
		Registry:     testRegistry(t, specs...),
		Engine:       eng,
		BudgetMB:     budgetMB,
		DrainTimeout: time.Second,
		Publisher:    pub,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m, pub
}

var errBoom = errors.New("boom")
