package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/cookbot/internal/pipeline"
	"github.com/ppiankov/cookbot/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant over HTTP",
	Long: `Serve starts the HTTP API:
  POST /api/query  {"query": "...", "cookware": ["pot"]}
  GET  /health

Example:
  cookbot serve
  cookbot serve --addr :9000 --debug`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().Bool("debug", false, "include debug_info in responses")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.debug", serveCmd.Flags().Lookup("debug"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(false)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting cookbot",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("search_provider", cfg.Search.Provider),
		zap.Bool("debug", cfg.Server.Debug),
	)

	p := pipeline.NewPipeline(cfg, logger)
	srv := server.New(cfg.Server, p, logger)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
