package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cschone/bikefit/internal/server"
	"github.com/cschone/bikefit/pkg/cache"
	"github.com/cschone/bikefit/pkg/pipeline"
	"github.com/cschone/bikefit/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string // listen address
	redisAddr string // redis cache backend ("" = file cache)
	mongoURI  string // mongodb bike store ("" = in-memory store)
	noCache   bool   // disable caching entirely
}

// newServeCmd creates the serve command running the HTTP API.
//
// Backends degrade gracefully: without --redis the cache lives on disk,
// without --mongo the bike library lives in memory and is lost on restart.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bikefit HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for the shared cache (e.g. localhost:6379)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "mongodb URI for the bike library (e.g. mongodb://localhost:27017)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// applyConfig fills unset flags from the config file's [serve] section.
func (o *serveOpts) applyConfig(cfg Config) {
	if o.addr == "" {
		o.addr = cfg.Serve.Addr
	}
	if o.addr == "" {
		o.addr = ":8080"
	}
	if o.redisAddr == "" {
		o.redisAddr = cfg.Serve.Redis
	}
	if o.mongoURI == "" {
		o.mongoURI = cfg.Serve.Mongo
	}
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)
	opts.applyConfig(cliConfig)

	c, err := buildServerCache(ctx, opts)
	if err != nil {
		return err
	}

	st, err := buildServerStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           server.New(server.Config{Runner: runner, Store: st, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func buildServerCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
	}
	return newCache(false)
}

func buildServerStore(ctx context.Context, opts *serveOpts) (store.Store, error) {
	if opts.mongoURI != "" {
		return store.NewMongoStore(ctx, store.MongoConfig{URI: opts.mongoURI})
	}
	return store.NewMemoryStore(), nil
}
