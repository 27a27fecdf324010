package types

import "time"

// SizeClass buckets catalog models by rough parameter count.
type SizeClass string

const (
	SizeSmall SizeClass = "small"
	SizeLarge SizeClass = "large"
)

// ModelSpec describes a catalog model. Built once at startup, never mutated.
type ModelSpec struct {
	// Stable identifier, vendor/name form.
	// example: gemma/gemma-3-1b-it-q8
	ID string `json:"id"`
	// Human-friendly name.
	// example: Gemma 3 1B Instruct (8-bit)
	Name string `json:"name"`
	// Size class: small or large.
	Size SizeClass `json:"size"`
	// Expected accelerator memory footprint in GB, informational.
	ExpectedGB float64 `json:"expected_gb"`
	// Weight file name searched for under the models directory.
	WeightFile string `json:"weight_file"`
}

// ExpectedMB converts the expected footprint to whole megabytes.
func (s ModelSpec) ExpectedMB() int {
	mb := int(s.ExpectedGB * 1024)
	if mb <= 0 {
		mb = 1
	}
	return mb
}

// SummarizationRequest carries one summarize call's inputs.
// Zero MaxTokens/Temperature/TopP mean "use defaults"; Explicit* mark
// values the caller actually set so zero can be validated as supplied.
type SummarizationRequest struct {
	Text        string  `json:"text"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	// ExplicitMaxTokens marks MaxTokens as caller-supplied, so 0 or a
	// negative value is rejected instead of defaulted.
	ExplicitMaxTokens bool `json:"-"`
}

// SummaryMetrics is the per-call performance block.
type SummaryMetrics struct {
	// Wall-clock time of the generation loop only.
	InferenceTime   time.Duration `json:"inference_time_ns"`
	TokensGenerated int           `json:"tokens_generated"`
	TokensPerSecond float64       `json:"tokens_per_second"`
	// Accelerator memory delta across generation, MB.
	MemoryUsedMB float64 `json:"memory_used_mb"`
	// Fraction of the original character length retained by the summary.
	CompressionRatio float64 `json:"compression_ratio"`
}

// SummarizationResult is immutable once returned; owned by the caller.
type SummarizationResult struct {
	Summary  string         `json:"summary"`
	Original string         `json:"original"`
	Metrics  SummaryMetrics `json:"metrics"`
}

// DatasetSample is one benchmark input.
type DatasetSample struct {
	Text             string `json:"text"`
	ReferenceSummary string `json:"summary,omitempty"`
}

// BenchmarkAggregate is recomputed fully from per-sample results on each run.
type BenchmarkAggregate struct {
	SampleCount int           `json:"sample_count"`
	TotalTime   time.Duration `json:"total_time_ns"`
	AvgTime     time.Duration `json:"avg_time_ns"`
	TotalTokens int           `json:"total_tokens"`
	// Total tokens over total time, not the mean of per-sample rates.
	AvgTokensPerSecond  float64 `json:"avg_tokens_per_second"`
	AvgCompressionRatio float64 `json:"avg_compression_ratio"`
}

// BenchmarkReport bundles one run's ordered per-sample results and aggregate.
type BenchmarkReport struct {
	RunID     string                `json:"run_id"`
	ModelID   string                `json:"model_id"`
	StartedAt time.Time             `json:"started_at"`
	Results   []SummarizationResult `json:"results"`
	Aggregate BenchmarkAggregate    `json:"aggregate"`
}
