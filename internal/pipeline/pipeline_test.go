package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sumbench/internal/engine"
	"sumbench/internal/manager"
	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

// fakeRuntime produces a fixed summary and records call parameters.
type fakeRuntime struct {
	content string
	tokens  int
	genErr  error
	// blockOnCtx parks Generate until the call context is canceled.
	blockOnCtx bool
	// started is closed once on first Generate entry when set.
	started chan struct{}
	delay   time.Duration

	mu          sync.Mutex
	startedOnce bool
	concurrent  int
	maxConc     int
	lastParams  engine.Params
	lastPrompt  string
}

func (r *fakeRuntime) Generate(ctx context.Context, prompt string, params engine.Params, onToken func(string) error) (engine.Final, error) {
	r.mu.Lock()
	r.concurrent++
	if r.concurrent > r.maxConc {
		r.maxConc = r.concurrent
	}
	r.lastParams = params
	r.lastPrompt = prompt
	if r.started != nil && !r.startedOnce {
		r.startedOnce = true
		close(r.started)
	}
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
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return engine.Final{}, ctx.Err()
		}
	}
	if r.genErr != nil {
		return engine.Final{}, r.genErr
	}
	content := r.content
	if content == "" {
		content = "a concise summary of the input"
	}
	tokens := r.tokens
	if tokens == 0 {
		tokens = 6
	}
	return engine.Final{Content: content, TokensGenerated: tokens, FinishReason: "stop"}, nil
}

func (r *fakeRuntime) MemoryMB() int { return 64 }
func (r *fakeRuntime) Close() error  { return nil }

// fakeEngine hands out a single prepared runtime.
type fakeEngine struct {
	rt *fakeRuntime
}

func (e *fakeEngine) Load(ctx context.Context, s types.ModelSpec, path string, onProgress engine.ProgressFunc) (engine.Runtime, error) {
	if onProgress != nil {
		onProgress(1)
	}
	return e.rt, nil
}

// boundPipeline loads "m" through a real manager and binds a pipeline.
func boundPipeline(t *testing.T, rt *fakeRuntime) (*Pipeline, *manager.Manager) {
	t.Helper()
	dir := t.TempDir()
	sp := types.ModelSpec{ID: "m", Name: "m", Size: types.SizeSmall, ExpectedGB: 0.1, WeightFile: "m.gguf"}
	if err := os.WriteFile(filepath.Join(dir, sp.WeightFile), []byte("w"), 0o644); err != nil {
		t.Fatalf("weight file: %v", err)
	}
	reg, err := registry.New([]types.ModelSpec{sp}, dir)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	m := manager.NewWithConfig(manager.Config{
		Registry:     reg,
		Engine:       &fakeEngine{rt: rt},
		DrainTimeout: time.Second,
	})
	t.Cleanup(func() { _ = m.Close() })
	h, err := m.RequestLoad(context.Background(), "m")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, err := New(h)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return p, m
}

const sampleText = "The committee published its annual report on Thursday, noting a steady rise in regional water quality over the past five years."

func TestSummarize_EmptyInput(t *testing.T) {
	p, _ := boundPipeline(t, &fakeRuntime{})
	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: text})
		if err == nil || !IsEmptyInput(err) {
			t.Fatalf("text %q: expected empty input, got %v", text, err)
		}
	}
}

func TestSummarize_InvalidParameters(t *testing.T) {
	p, _ := boundPipeline(t, &fakeRuntime{})
	cases := []types.SummarizationRequest{
		{Text: sampleText, Temperature: 1.5},
		{Text: sampleText, Temperature: -0.1},
		{Text: sampleText, TopP: 1.2},
		{Text: sampleText, MaxTokens: 0, ExplicitMaxTokens: true},
		{Text: sampleText, MaxTokens: -5, ExplicitMaxTokens: true},
	}
	for i, req := range cases {
		if _, err := p.Summarize(context.Background(), req); err == nil || !IsInvalidParameter(err) {
			t.Fatalf("case %d: expected invalid parameter, got %v", i, err)
		}
	}
}

func TestSummarize_MetricBounds(t *testing.T) {
	p, _ := boundPipeline(t, &fakeRuntime{delay: time.Millisecond})
	res, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	m := res.Metrics
	if m.TokensGenerated <= 0 {
		t.Fatalf("tokens_generated must be > 0, got %d", m.TokensGenerated)
	}
	if m.InferenceTime <= 0 {
		t.Fatalf("inference_time must be > 0, got %v", m.InferenceTime)
	}
	if m.TokensPerSecond <= 0 {
		t.Fatalf("tokens_per_second must be > 0, got %v", m.TokensPerSecond)
	}
	if m.CompressionRatio <= 0 {
		t.Fatalf("compression_ratio must be > 0, got %v", m.CompressionRatio)
	}
	if m.MemoryUsedMB < 0 {
		t.Fatalf("memory delta must not be negative, got %v", m.MemoryUsedMB)
	}
	if res.Original != sampleText {
		t.Fatalf("result must echo the original input")
	}
	if res.Summary == "" {
		t.Fatalf("expected a non-empty summary")
	}
}

func TestSummarize_DefaultsAndPromptShape(t *testing.T) {
	rt := &fakeRuntime{}
	p, _ := boundPipeline(t, rt)
	if _, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText, Temperature: 0.3}); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	rt.mu.Lock()
	params := rt.lastParams
	prompt := rt.lastPrompt
	rt.mu.Unlock()
	if params.MaxTokens != DefaultMaxTokens {
		t.Fatalf("expected default max tokens %d, got %d", DefaultMaxTokens, params.MaxTokens)
	}
	if params.TopP != DefaultTopP {
		t.Fatalf("expected default top-p %v, got %v", DefaultTopP, params.TopP)
	}
	if params.Temperature != 0.3 {
		t.Fatalf("temperature not passed through: %v", params.Temperature)
	}
	if len(params.Stop) == 0 {
		t.Fatalf("expected stop tokens to be set")
	}
	if prompt != "Text: "+sampleText+"\n\nSummary:" {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
}

func TestSummarize_GenerationFailure(t *testing.T) {
	rt := &fakeRuntime{genErr: errors.New("kv cache overflow")}
	p, _ := boundPipeline(t, rt)
	_, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText})
	if err == nil || !IsGenerationFailed(err) {
		t.Fatalf("expected generation failed, got %v", err)
	}
}

func TestSummarize_QueuesConcurrentCalls(t *testing.T) {
	rt := &fakeRuntime{delay: 5 * time.Millisecond}
	p, _ := boundPipeline(t, rt)

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
	}
	rt.mu.Lock()
	maxConc := rt.maxConc
	rt.mu.Unlock()
	if maxConc != 1 {
		t.Fatalf("concurrent calls reached the runtime: max in flight %d", maxConc)
	}
}

func TestSummarize_SerializesAcrossPipelinesOnOneHandle(t *testing.T) {
	rt := &fakeRuntime{delay: 30 * time.Millisecond}
	p1, m := boundPipeline(t, rt)

	// A second pipeline bound to the very same handle must still share
	// the handle's single generation slot.
	h, ok := m.HandleFor("m")
	if !ok {
		t.Fatalf("expected resident handle")
	}
	p2, err := New(h)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range []*Pipeline{p1, p2} {
		wg.Add(1)
		go func(i int, p *Pipeline) {
			defer wg.Done()
			_, errs[i] = p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText})
		}(i, p)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("pipeline %d: %v", i, err)
		}
	}
	rt.mu.Lock()
	maxConc := rt.maxConc
	rt.mu.Unlock()
	if maxConc != 1 {
		t.Fatalf("runtime reached concurrently via two pipelines over one handle: max in flight %d", maxConc)
	}
}

func TestSummarize_WhitespaceOnlyOutput(t *testing.T) {
	rt := &fakeRuntime{content: " \n ", tokens: 2}
	p, _ := boundPipeline(t, rt)
	_, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText})
	if err == nil || !IsGenerationFailed(err) {
		t.Fatalf("expected generation failed for empty summary, got %v", err)
	}
}

func TestSummarize_UnloadInFlightFailsCleanly(t *testing.T) {
	rt := &fakeRuntime{blockOnCtx: true, started: make(chan struct{})}
	p, m := boundPipeline(t, rt)

	type outcome struct {
		res types.SummarizationResult
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		res, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText})
		resCh <- outcome{res: res, err: err}
	}()

	<-rt.started
	if err := m.Unload("m"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	out := <-resCh
	if out.err == nil || !manager.IsModelUnloaded(out.err) {
		t.Fatalf("expected ModelUnloaded, got %v", out.err)
	}
	if out.res.Summary != "" {
		t.Fatalf("no result may reference freed state: %+v", out.res)
	}

	// Further calls on the stale binding fail the same way.
	if _, err := p.Summarize(context.Background(), types.SummarizationRequest{Text: sampleText}); err == nil || !manager.IsModelUnloaded(err) {
		t.Fatalf("expected ModelUnloaded on stale handle, got %v", err)
	}
}

func TestNew_RejectsStaleHandle(t *testing.T) {
	rt := &fakeRuntime{}
	_, m := boundPipeline(t, rt)
	h, ok := m.HandleFor("m")
	if !ok {
		t.Fatalf("expected resident handle")
	}
	if err := m.Unload("m"); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if _, err := New(h); err == nil || !IsModelNotResident(err) {
		t.Fatalf("expected ModelNotResident, got %v", err)
	}
	if _, err := New(nil); err == nil || !IsModelNotResident(err) {
		t.Fatalf("expected ModelNotResident for nil handle, got %v", err)
	}
}

func TestSummarize_CallerCancel(t *testing.T) {
	rt := &fakeRuntime{blockOnCtx: true, started: make(chan struct{})}
	p, _ := boundPipeline(t, rt)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := p.Summarize(ctx, types.SummarizationRequest{Text: sampleText})
		errCh <- err
	}()
	<-rt.started
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
