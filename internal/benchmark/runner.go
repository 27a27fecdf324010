// Package benchmark drives a summarization pipeline over an ordered
// sample sequence and folds per-sample metrics into run aggregates.
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sumbench/pkg/types"
)

// Summarizer is the slice of the pipeline the runner needs.
type Summarizer interface {
	Summarize(ctx context.Context, req types.SummarizationRequest) (types.SummarizationResult, error)
	ModelID() string
}

// Runner executes benchmark runs strictly sequentially, in input order.
// No parallel generation: timings stay uncontaminated by contention and
// the pipeline's single-in-flight constraint is respected.
type Runner struct {
	log zerolog.Logger
}

// NewRunner builds a runner logging through l.
func NewRunner(l zerolog.Logger) *Runner {
	return &Runner{log: l}
}

// Run processes samples fail-fast: the first failure aborts the run,
// returning the completed prefix of results alongside the error.
func (r *Runner) Run(ctx context.Context, s Summarizer, samples []types.DatasetSample) (types.BenchmarkReport, error) {
	report := types.BenchmarkReport{
		RunID:     uuid.NewString(),
		ModelID:   s.ModelID(),
		StartedAt: time.Now(),
	}
	for i, sample := range samples {
		res, err := s.Summarize(ctx, types.SummarizationRequest{Text: sample.Text})
		if err != nil {
			report.Aggregate = Aggregate(report.Results)
			return report, fmt.Errorf("sample %d/%d: %w", i+1, len(samples), err)
		}
		report.Results = append(report.Results, res)
		r.log.Debug().Str("run", report.RunID).Int("sample", i+1).
			Int("tokens", res.Metrics.TokensGenerated).
			Dur("took", res.Metrics.InferenceTime).Msg("sample done")
	}
	report.Aggregate = Aggregate(report.Results)
	r.log.Info().Str("run", report.RunID).Str("model", report.ModelID).
		Int("samples", report.Aggregate.SampleCount).
		Float64("tokens_per_sec", report.Aggregate.AvgTokensPerSecond).
		Msg("benchmark complete")
	return report, nil
}

// Aggregate is a pure fold over per-sample results, recomputable from
// the returned sequence alone. Average tokens/sec is total tokens over
// total time rather than the mean of per-sample rates, which would bias
// toward short samples.
func Aggregate(results []types.SummarizationResult) types.BenchmarkAggregate {
	agg := types.BenchmarkAggregate{SampleCount: len(results)}
	if len(results) == 0 {
		return agg
	}
	var ratioSum float64
	for _, res := range results {
		agg.TotalTime += res.Metrics.InferenceTime
		agg.TotalTokens += res.Metrics.TokensGenerated
		ratioSum += res.Metrics.CompressionRatio
	}
	agg.AvgTime = agg.TotalTime / time.Duration(len(results))
	if agg.TotalTime > 0 {
		agg.AvgTokensPerSecond = float64(agg.TotalTokens) / agg.TotalTime.Seconds()
	}
	agg.AvgCompressionRatio = ratioSum / float64(len(results))
	return agg
}
