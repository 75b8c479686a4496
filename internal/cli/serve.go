package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/msgstore/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the message query API over HTTP",
		Long: `Serve GET /messages, /metrics and /healthz.

The messages table is created on startup when missing. The server stops
gracefully on SIGINT or SIGTERM.

Examples:
  msgstore serve --config ./msgstore.yaml
  msgstore serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides http.addr)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEnv(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.repo.EnsureSchema(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to create schema", err).WithCode(ErrCodeDatabase)
	}

	addr := e.cfg.HTTP.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	handler := httpapi.NewMessageHandler(e.repo, e.repo.Serializer().IsText(), slog.Default())
	router := httpapi.NewRouter(handler, e.metrics)
	if err := httpapi.Serve(ctx, addr, router, slog.Default()); err != nil {
		return WrapExitError(ExitFailure, "http server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
