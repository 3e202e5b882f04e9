package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/ppiankov/cookbot/internal/model"
	"github.com/ppiankov/cookbot/internal/pipeline"
	"github.com/ppiankov/cookbot/internal/worker"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer many queries from a file in parallel",
	Long: `Batch answers independent queries concurrently:
- Read queries from the input file (one per line, # starts a comment)
- Optionally declare cookware after a pipe: "chicken soup | pot, ladle"
- Answer queries in parallel with a configurable worker count
- Print each answer, and optionally write all answers as JSON

Example:
  cookbot batch queries.txt
  cookbot batch queries.txt --concurrency 10 --output answers.json
  cookbot batch queries.txt --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputFile, "output", "", "write all answers to this JSON file")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

// batchEntry is one line of the JSON output
type batchEntry struct {
	Query  model.Query   `json:"query"`
	Answer *model.Answer `json:"answer,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	logger, err := newLogger(true)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Cookbot Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg, logger)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	counts := make(map[model.Outcome]int)
	failureCount := 0
	var failures *multierror.Error
	entries := make([]batchEntry, 0, len(results))

	for _, result := range results {
		entry := batchEntry{Query: result.Query}
		if result.Error != nil {
			failureCount++
			failures = multierror.Append(failures, fmt.Errorf("%s: %w", result.Query.Text, result.Error))
			entry.Error = result.Error.Error()
			entries = append(entries, entry)
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query.Text, result.Error)
			continue
		}

		answer := result.Answer
		entry.Answer = &answer
		entries = append(entries, entry)
		counts[answer.Outcome]++

		fmt.Printf("### %s\n\n%s\n\n", result.Query.Text, answer.Text)
		marker := "✓"
		if answer.Degraded {
			marker = "~"
		}
		fmt.Fprintf(os.Stderr, "%s %s (%s, %s)\n", marker, result.Query.Text, answer.Intent, answer.Outcome)
	}

	if outputFile != "" {
		if err := writeBatchJSON(outputFile, entries); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:        %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Answered:     %d\n", counts[model.OutcomeAnswered])
	fmt.Fprintf(os.Stderr, "  Refused:      %d\n", counts[model.OutcomeRefused])
	fmt.Fprintf(os.Stderr, "  Infeasible:   %d\n", counts[model.OutcomeInfeasible])
	fmt.Fprintf(os.Stderr, "  Unavailable:  %d\n", counts[model.OutcomeUnavailable])
	fmt.Fprintf(os.Stderr, "  Failures:     %d\n", failureCount)
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "  Output:       %s\n", outputFile)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return failures.ErrorOrNil()
}

func writeBatchJSON(path string, entries []batchEntry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write answers: %w", err)
	}
	return nil
}
