package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/hyperon-hyeon/Graphear/api/handlers"
	"github.com/hyperon-hyeon/Graphear/api/routes"
	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/internal/service/document"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		panic(err)
	}

	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithEncoding(cfg.Log.Encoding),
		logger.WithOutputPaths(cfg.Log.OutputPaths),
		logger.WithField("service", "graphear-api"),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// init document service
	docService, err := document.GetService(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to get document service", logger.Error(err))
	}
	defer docService.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, handlers.NewHandlers(docService, log.Named("http")), routes.Options{
		AllowOrigins:   cfg.Server.AllowOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         log.Named("access"),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Server.Retention > 0 {
		g.Go(func() error {
			runRetention(gctx, docService, cfg.Server.Retention, cfg.Server.CleanupEvery, log.Named("retention"))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Server stopped")
}

// runRetention deletes expired uploads and results every interval until ctx ends.
func runRetention(ctx context.Context, svc *document.DocumentService, retention, every time.Duration, log logger.Logger) {
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.Cleanup(ctx, retention); err != nil {
				log.Error("Retention cleanup failed", logger.Error(err))
			}
		}
	}
}
