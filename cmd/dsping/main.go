// dsping
//
// Sends one fixed chat completion request to the DeepSeek API and prints
// the reply or the error.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/jxucoder/dsping/internal/config"
	"github.com/jxucoder/dsping/internal/deepseek"
	"github.com/jxucoder/dsping/internal/history"
	"github.com/jxucoder/dsping/internal/report"
	"github.com/jxucoder/dsping/internal/runner"
)

var (
	version = "dev"
	envFile string
	verbose bool
	timeout time.Duration
	record  bool
)

var rootCmd = &cobra.Command{
	Use:   "dsping",
	Short: "dsping - one-shot DeepSeek chat completion",
	Long: `dsping sends a single fixed chat completion request to the DeepSeek API
and prints the reply. DEEPSEEK_API_KEY must be set, either in the
environment or in a .env file in the working directory.

  dsping                          Send the request and print the result
  dsping --record                 Same, and keep the outcome in the local history
  dsping history                  List recorded runs
  dsping config show              Show the effective configuration`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default: .env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "request timeout, 0 waits indefinitely (overrides "+config.EnvTimeout+")")
	rootCmd.Flags().BoolVar(&record, "record", false, "record the run in the local history database")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Transport failures were already reported on stdout.
		var transportErr *deepseek.TransportError
		if !errors.As(err, &transportErr) {
			report.Write(os.Stderr, "", err)
		}
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeout
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)
	return runOnce(cmd.Context(), cfg, cmd.OutOrStdout(), logger, record)
}

// runOnce validates the credential before anything touches the network,
// then performs the single request.
func runOnce(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger, recordRun bool, opts ...deepseek.Option) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.DebugContext(ctx, "credential loaded", "key", cfg.MaskedAPIKey(), "timeout", cfg.Timeout)

	clientOpts := append([]deepseek.Option{
		deepseek.WithTimeout(cfg.Timeout),
		deepseek.WithLogger(logger),
	}, opts...)
	client, err := deepseek.New(cfg.APIKey, clientOpts...)
	if err != nil {
		return err
	}

	r := &runner.Runner{Client: client, Out: out, Logger: logger}
	if recordRun {
		store, err := history.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		r.Recorder = store
	}
	return r.Run(ctx)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}
