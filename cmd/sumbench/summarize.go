package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sumbench/internal/pipeline"
	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

func newSummarizeCmd(a *app) *cobra.Command {
	var (
		modelID     string
		inputFile   string
		maxTokens   int
		temperature float64
		verbose     bool
	)
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize text from a file or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(inputFile)
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
			req := types.SummarizationRequest{
				Text:              text,
				MaxTokens:         maxTokens,
				Temperature:       temperature,
				ExplicitMaxTokens: cmd.Flags().Changed("max-tokens"),
			}
			res, err := p.Summarize(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Println(res.Summary)
			if verbose {
				printMetrics(res.Metrics)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&modelID, "model", registry.DefaultModelID, "Catalog model id")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "Read input text from this file (default stdin)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum generated tokens (default 256)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.3, "Sampling temperature in [0,1], 0 = greedy")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Print the full metrics block")
	return cmd
}

func readInput(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printMetrics(m types.SummaryMetrics) {
	fmt.Printf("\n--- metrics ---\n")
	fmt.Printf("inference time:    %s\n", m.InferenceTime)
	fmt.Printf("tokens generated:  %d\n", m.TokensGenerated)
	fmt.Printf("tokens/sec:        %.2f\n", m.TokensPerSecond)
	fmt.Printf("memory used:       %.1f MB\n", m.MemoryUsedMB)
	fmt.Printf("compression ratio: %.3f (fraction of original retained)\n", m.CompressionRatio)
}
