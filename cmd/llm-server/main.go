// llm-server - HTTP façade over a chat-completion provider.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matiasleandrokruk/llm-server/internal/api"
	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
	"github.com/matiasleandrokruk/llm-server/internal/infra/llm"
	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
	"github.com/matiasleandrokruk/llm-server/internal/server"
	"github.com/matiasleandrokruk/llm-server/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2

	shutdownTimeout = 10 * time.Second
)

// runtimeError marks failures that happen after argument parsing succeeded.
// Anything else returned by cobra is a usage error.
type runtimeError struct{ err error }

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	root := newRootCmd(out)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(out, "Error:", err) //nolint:errcheck
	var rtErr *runtimeError
	if errors.As(err, &rtErr) {
		return exitFailure
	}
	return exitUsage
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           version.Service,
		Short:         "HTTP façade over a chat-completion provider",
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newServeCmd(), newModelsCmd(out), newVersionCmd(out))
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(out, version.String()) //nolint:errcheck
		},
	}
}

func newModelsCmd(out io.Writer) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the configured provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "yaml" && output != "json" {
				return fmt.Errorf("invalid --output %q (want yaml or json)", output)
			}
			return runModels(cmd.Context(), out, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

// bootstrap loads .env and the environment, then builds the logger and provider.
func bootstrap() (config.Config, *slog.Logger, llm.Provider, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil, nil, &runtimeError{fmt.Errorf("load .env: %w", err)}
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, &runtimeError{err}
	}

	logger := logging.New(os.Stderr, cfg.Server.LogLevel, cfg.Server.Environment)
	slog.SetDefault(logger)

	provider, err := llm.NewProvider(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, &runtimeError{err}
	}
	return cfg, logger, provider, nil
}

func runServe(ctx context.Context) error {
	cfg, logger, provider, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srvCfg := serverConfig(cfg)
	srv := server.NewServer(api.NewRouter(cfg, provider, logger), srvCfg, logger)

	logger.Info("Server configured",
		"addr", srv.Addr(),
		"environment", cfg.Server.Environment,
		"provider", cfg.LLMProvider,
		"model", cfg.Provider().Model,
		"write_timeout", srvCfg.WriteTimeout,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return &runtimeError{err}
		}
		return nil
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return &runtimeError{err}
	}
	return nil
}

// serverConfig sizes the listener so the provider timeout, not the HTTP
// write deadline, decides when a slow completion fails.
func serverConfig(cfg config.Config) server.Config {
	srvCfg := server.DefaultConfig().WithUpstreamTimeout(cfg.Provider().Timeout)
	srvCfg.Host = cfg.Server.Host
	srvCfg.Port = cfg.Server.Port
	return srvCfg
}

type modelCatalog struct {
	Provider string   `json:"provider" yaml:"provider"`
	Model    string   `json:"model" yaml:"model"`
	Models   []string `json:"models" yaml:"models"`
}

func runModels(ctx context.Context, out io.Writer, output string) error {
	cfg, _, provider, err := bootstrap()
	if err != nil {
		return err
	}

	catalog := modelCatalog{
		Provider: cfg.LLMProvider,
		Model:    cfg.Provider().Model,
		Models:   provider.ListModels(ctx),
	}

	if output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(catalog); err != nil {
			return &runtimeError{fmt.Errorf("encode models: %w", err)}
		}
		return nil
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	defer enc.Close() //nolint:errcheck
	if err := enc.Encode(catalog); err != nil {
		return &runtimeError{fmt.Errorf("encode models: %w", err)}
	}
	return nil
}
