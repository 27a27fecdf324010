// Package pipeline executes one summarization request end-to-end
// against a single resident model handle and produces a fully-populated
// result record with performance metrics.
package pipeline

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"sumbench/internal/engine"
	"sumbench/internal/manager"
	"sumbench/pkg/types"
)

// Pipeline binds to exactly one resident handle. It never mutates
// manager state; the handle is read at construction and treated as
// immutable, with invalidation detected on every call.
type Pipeline struct {
	handle *manager.Handle
	probe  *engine.MemProbe
	log    zerolog.Logger
}

// Option tunes pipeline construction.
type Option func(*Pipeline)

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithMemProbe overrides the accelerator memory probe.
func WithMemProbe(probe *engine.MemProbe) Option {
	return func(p *Pipeline) { p.probe = probe }
}

// New builds a pipeline bound to h. Fails with ModelNotResident when
// the handle is nil or already invalidated.
func New(h *manager.Handle, opts ...Option) (*Pipeline, error) {
	if h == nil {
		return nil, ErrModelNotResident("(nil handle)")
	}
	if !h.Valid() {
		return nil, ErrModelNotResident(h.ModelID())
	}
	p := &Pipeline{
		handle: h,
		log:    zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.probe == nil {
		p.probe = engine.NewMemProbe()
	}
	return p, nil
}

// ModelID returns the bound model's id.
func (p *Pipeline) ModelID() string { return p.handle.ModelID() }

// Summarize runs one request. Metrics are computed strictly from the
// executed call: timing brackets the generation loop only, the memory
// delta is probed immediately before and after it, and the compression
// ratio compares character counts of summary and original.
func (p *Pipeline) Summarize(ctx context.Context, req types.SummarizationRequest) (types.SummarizationResult, error) {
	var zero types.SummarizationResult

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return zero, ErrEmptyInput()
	}
	params, err := p.resolveParams(req)
	if err != nil {
		return zero, err
	}

	// Begin queues behind any in-flight borrow of the handle, so calls
	// serialize per handle even across pipeline instances.
	rt, callCtx, end, err := p.handle.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer end()

	prompt := buildPrompt(text)
	memBefore := p.probe.SampleMB()
	start := time.Now()
	final, err := rt.Generate(callCtx, prompt, params, nil)
	elapsed := time.Since(start)
	memAfter := p.probe.SampleMB()

	if err != nil {
		if !p.handle.Valid() {
			return zero, manager.ErrModelUnloaded(p.handle.ModelID())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, ErrGenerationFailed(p.handle.ModelID(), err)
	}
	// Generation may have raced an unload past the engine's error path.
	if !p.handle.Valid() {
		return zero, manager.ErrModelUnloaded(p.handle.ModelID())
	}

	summary := strings.TrimSpace(final.Content)
	tokens := final.TokensGenerated
	if tokens <= 0 {
		return zero, ErrGenerationFailed(p.handle.ModelID(), errNoTokens)
	}
	// A stop token fired immediately or the model emitted only
	// whitespace; no usable summary means no valid metrics either.
	if summary == "" {
		return zero, ErrGenerationFailed(p.handle.ModelID(), errNoSummary)
	}
	if elapsed <= 0 {
		// Coarse clocks can report zero on very short calls.
		elapsed = time.Nanosecond
	}

	res := types.SummarizationResult{
		Summary:  summary,
		Original: req.Text,
		Metrics: types.SummaryMetrics{
			InferenceTime:    elapsed,
			TokensGenerated:  tokens,
			TokensPerSecond:  float64(tokens) / elapsed.Seconds(),
			MemoryUsedMB:     engine.DeltaMB(memBefore, memAfter),
			CompressionRatio: float64(utf8.RuneCountInString(summary)) / float64(utf8.RuneCountInString(req.Text)),
		},
	}
	p.log.Debug().Str("model", p.handle.ModelID()).
		Int("tokens", tokens).Dur("took", elapsed).
		Float64("compression", res.Metrics.CompressionRatio).
		Msg("summarize done")
	return res, nil
}

// resolveParams validates the request and fills implementation defaults.
func (p *Pipeline) resolveParams(req types.SummarizationRequest) (engine.Params, error) {
	if req.Temperature < 0 || req.Temperature > 1 {
		return engine.Params{}, ErrInvalidParameter("temperature must be in [0,1]")
	}
	if req.ExplicitMaxTokens && req.MaxTokens <= 0 {
		return engine.Params{}, ErrInvalidParameter("max tokens must be > 0")
	}
	if req.TopP < 0 || req.TopP > 1 {
		return engine.Params{}, ErrInvalidParameter("top-p must be in [0,1]")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	topP := req.TopP
	if topP == 0 {
		topP = DefaultTopP
	}
	return engine.Params{
		// Temperature 0 (or absent) selects greedy decoding.
		Temperature: req.Temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Stop:        stopTokens,
	}, nil
}

var (
	errNoTokens  = genError{"model produced no tokens"}
	errNoSummary = genError{"model produced an empty summary"}
)

type genError struct{ msg string }

func (e genError) Error() string { return e.msg }
