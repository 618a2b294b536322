package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/water-atlas/internal/api"
	"github.com/sells-group/water-atlas/internal/atlas"
	"github.com/sells-group/water-atlas/internal/config"
	"github.com/sells-group/water-atlas/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the atlas HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := atlas.FromConfig(ctx, cfg)
		if err != nil {
			return err
		}

		bookmarks, err := openBookmarks(ctx, cfg.Store)
		if err != nil {
			return err
		}
		if bookmarks != nil {
			defer bookmarks.Close() //nolint:errcheck
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewServer(svc, bookmarks, cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Bool("bookmarks", bookmarks != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// openBookmarks opens and migrates the bookmark store. An empty DSN
// disables bookmarks.
func openBookmarks(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	if sc.DSN == "" {
		return nil, nil
	}
	s, err := store.NewSQLite(sc.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "open bookmark store")
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, eris.Wrap(err, "migrate bookmark store")
	}
	return s, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
