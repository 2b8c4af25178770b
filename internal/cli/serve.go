package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tooltree/pkg/api"
	"github.com/matzehuels/tooltree/pkg/cache"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown of "tooltree serve".
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
		maxBody  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the treemap API over HTTP",
		Long: `Serve the treemap API over HTTP.

Endpoints:
  GET  /health        liveness check
  POST /api/treemap   build treemap data from posted records or CSV
  POST /api/figure    build and render (?format=plotly|html|json|dot|svg|png|pdf)

Results are cached in Redis when --redis is given and in the local cache
directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisURL, noCache, maxBody)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the shared cache, e.g. redis://localhost:6379/0")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&maxBody, "max-body", api.DefaultMaxBodyBytes, "maximum request body size in bytes")

	return cmd
}

// runServe serves the API until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, redisURL string, noCache bool, maxBody int64) error {
	runner, err := c.newServeRunner(ctx, redisURL, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(runner, c.Logger, api.Config{MaxBodyBytes: maxBody}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServeRunner picks the server's cache: Redis when a URL is given, the
// local file cache otherwise.
func (c *CLI) newServeRunner(ctx context.Context, redisURL string, noCache bool) (*pipeline.Runner, error) {
	if redisURL == "" || noCache {
		return c.newRunner(noCache)
	}
	rc, err := cache.NewRedisCache(ctx, redisURL, "")
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	c.Logger.Info("using redis cache")
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, appName+":"), c.Logger), nil
}
