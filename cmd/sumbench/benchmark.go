package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sumbench/internal/benchmark"
	"sumbench/internal/dataset"
	"sumbench/internal/pipeline"
	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

func newBenchmarkCmd(a *app) *cobra.Command {
	var (
		modelID     string
		datasetPath string
		limit       int
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run the summarization benchmark over a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, err := loadSamples(datasetPath, limit)
			if err != nil {
				return err
			}
			h, err := loadWithProgress(cmd.Context(), a.mgr, modelID)
			if err != nil {
				return err
			}
			p, err := pipeline.New(h, pipeline.WithLogger(a.log))
			if err != nil {
				return err
			}
			runner := benchmark.NewRunner(a.log)
			report, err := runner.Run(cmd.Context(), p, samples)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&modelID, "model", registry.DefaultModelID, "Catalog model id")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "JSONL dataset file (default: built-in fixtures)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Truncate the sample sequence")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func loadSamples(path string, limit int) ([]types.DatasetSample, error) {
	if path == "" {
		return dataset.Fixtures(limit), nil
	}
	return dataset.LoadFile(path, limit)
}

func printReport(r types.BenchmarkReport) {
	agg := r.Aggregate
	fmt.Printf("run %s  model %s\n", r.RunID, r.ModelID)
	fmt.Printf("samples:            %d\n", agg.SampleCount)
	fmt.Printf("total time:         %s\n", agg.TotalTime)
	fmt.Printf("avg time/sample:    %s\n", agg.AvgTime)
	fmt.Printf("avg tokens/sec:     %.2f\n", agg.AvgTokensPerSecond)
	fmt.Printf("avg compression:    %.3f\n", agg.AvgCompressionRatio)
	for i, res := range r.Results {
		fmt.Printf("  [%d] %d tok in %s (%.2f tok/s, ratio %.3f)\n",
			i+1, res.Metrics.TokensGenerated, res.Metrics.InferenceTime,
			res.Metrics.TokensPerSecond, res.Metrics.CompressionRatio)
	}
}
