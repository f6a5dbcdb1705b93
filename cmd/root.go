// Package cmd wires configuration and services into the pagewatch CLI.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/pagewatch/config"
	"sjsage522/pagewatch/helpers"
	"sjsage522/pagewatch/internal"
	"sjsage522/pagewatch/internal/extractor"
	"sjsage522/pagewatch/logger"
	"sjsage522/pagewatch/services/worker"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pagewatch",
	Short: "pagewatch reports changes on a web page to a Telegram chat.",
	Long: `pagewatch fetches one page, compares it with the state stored by the
previous run and sends a Telegram message for every detected change.
Without a subcommand it performs a single run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

// Execute loads .env, runs the selected command and returns the process exit code
func Execute() int {
	return ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the CLI with explicit arguments
func ExecuteArgs(args []string) int {
	// A missing .env file is fine; the environment may be set directly
	godotenv.Load()
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return exitCode(err)
}

// setup validates the configuration before anything touches the network
func setup() (*config.Config, *worker.Worker, *internal.Dependencies, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	ext, err := extractor.CreateExtractor(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	deps := internal.NewDependencies(cfg, ext.Kind())

	var opts []worker.Option
	if deps.Guard != nil {
		opts = append(opts, worker.WithGuard(deps.Guard))
	}
	if deps.Publisher != nil {
		opts = append(opts, worker.WithPublisher(deps.Publisher))
	}

	w := worker.NewWorker(cfg, helpers.NewPageFetcher(cfg.FetchTimeout), ext, deps.Store, deps.Notifier, opts...)

	logger.Default.Info().
		Str("environment", cfg.Environment).
		Str("strategy", string(cfg.Strategy)).
		Str("target", cfg.FetchURL).
		Msg("Starting pagewatch")

	return cfg, w, deps, nil
}
