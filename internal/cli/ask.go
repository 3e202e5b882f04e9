package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cookbot/internal/model"
	"github.com/ppiankov/cookbot/internal/pipeline"
)

var (
	askCookware []string
	askJSON     bool
	askTimeout  time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Ask a single cooking question",
	Long: `Ask classifies the query and answers it in one pass:
- Off-topic questions get a polite refusal
- Technique questions are answered directly
- Recipe requests are searched and, with --cookware, checked against what you have

Example:
  cookbot ask "How do I make chicken soup?"
  cookbot ask "How do I make a chocolate cake with what I have?" --cookware pot,whisk
  cookbot ask "Should I salt pasta water?" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringSliceVar(&askCookware, "cookware", nil, "cookware you have (comma-separated)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full answer as JSON")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall timeout for the query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(true)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	query := model.Query{Text: strings.Join(args, " "), Cookware: askCookware}
	if verbose {
		fmt.Fprintf(os.Stderr, "Query:    %s\n", query.Text)
		if len(query.Cookware) > 0 {
			fmt.Fprintf(os.Stderr, "Cookware: %s\n", strings.Join(query.Cookware, ", "))
		}
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, logger)
	answer := p.Answer(ctx, query)

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(answer); err != nil {
			return fmt.Errorf("encode answer: %w", err)
		}
	} else {
		fmt.Println(answer.Text)
	}

	if verbose {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Intent:   %s\n", answer.Intent)
		fmt.Fprintf(os.Stderr, "Outcome:  %s\n", answer.Outcome)
		fmt.Fprintf(os.Stderr, "Degraded: %v\n", answer.Degraded)
		fmt.Fprintf(os.Stderr, "Stages:   %v\n", answer.Stages)
	}

	if answer.Outcome == model.OutcomeUnavailable {
		return fmt.Errorf("assistant unavailable (request %s)", answer.RequestID)
	}
	return nil
}
