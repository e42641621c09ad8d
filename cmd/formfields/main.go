package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/internal/config"
	"github.com/goliatone/go-formfields/internal/logging"
)

var (
	cfg    config.Config
	logger *zap.Logger

	definitionsDir string
	backendName    string
	dsn            string
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "formfields",
	Short: "Render, edit and serve declaratively registered admin forms",
	Long: `formfields loads screens, sections, fields and controls from YAML or JSON
definition files and renders them as HTML, JSON or terminal prompts.

Settings come from the environment (and .env); flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("definitions") {
			loaded.Definitions = definitionsDir
		}
		if cmd.Flags().Changed("backend") {
			loaded.Backend = backendName
		}
		if cmd.Flags().Changed("dsn") {
			loaded.DSN = dsn
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&definitionsDir, "definitions", "d", config.DefaultDefinitions, "definitions directory")
	flags.StringVar(&backendName, "backend", config.BackendMemory, "value backend: memory, sqlite, mysql, redis, dynamodb")
	flags.StringVar(&dsn, "dsn", "", "SQL connection string for sqlite and mysql")
	flags.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")

	rootCmd.AddCommand(serveCmd, renderCmd, editCmd, inspectCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
