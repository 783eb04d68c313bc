package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/idekerlab/cdhidef-go/internal/server"
	"github.com/idekerlab/cdhidef-go/pkg/archive"
	"github.com/idekerlab/cdhidef-go/pkg/config"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command: run the conversion HTTP
// service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP service",
		Long: `Serve the converter over HTTP.

POST a HiDeF nodes/edges pair to /v1/conversions to convert it; the
resulting document is archived and can be fetched again by id. The
cache and archive backends come from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			return c.serve(cmd.Context(), cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")

	return cmd
}

// serve assembles the runner, archive store and HTTP server, then
// blocks until the context is cancelled.
func (c *CLI) serve(ctx context.Context, cfg config.Config, addr string) error {
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := newArchiveStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			c.Logger.Warn("failed to close archive store", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.New(runner, store, c.Logger).Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			c.Logger.Warn("shutdown error", "error", err)
		}
	}()

	c.Logger.Info("listening", "addr", addr,
		"cache", cfg.Cache.Backend, "archive", cfg.Archive.Backend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// newArchiveStore builds the archive backend from the config.
func newArchiveStore(ctx context.Context, cfg config.Config) (archive.Store, error) {
	if cfg.Archive.Backend == config.BackendMongo {
		return archive.NewMongoStore(ctx, archive.MongoConfig{
			URI:        cfg.Archive.Mongo.URI,
			Database:   cfg.Archive.Mongo.Database,
			Collection: cfg.Archive.Mongo.Collection,
		})
	}
	dir, err := cfg.ArchiveDir()
	if err != nil {
		return nil, err
	}
	return archive.NewFileStore(dir)
}
