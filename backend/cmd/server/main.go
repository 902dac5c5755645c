package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"graphchat/backend/internal/adapter"
	"graphchat/backend/internal/bridge"
	"graphchat/backend/internal/server"
	"graphchat/backend/internal/store"
	"graphchat/backend/pkg/config"
	"graphchat/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting chat hub...", zap.String("data_dir", cfg.DataDir))

	chats, err := store.NewChatStore(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize chat store", zap.Error(err))
	}
	graphs := store.NewGraphStore(cfg.DataDir, chats, store.GraphLimits{
		MaxFileBytes:    cfg.MaxGraphFileBytes,
		MaxNodes:        cfg.MaxGlobalNodes,
		MaxEdges:        cfg.MaxGlobalEdges,
		RebuildMaxChats: cfg.RebuildMaxChats,
		RebuildMaxChars: cfg.RebuildMaxChars,
	})
	settings := store.NewConfigStore(cfg.DataDir, cfg.DefaultModel)
	queue := bridge.NewRelayQueue(cfg.DataDir, chats)
	backend := adapter.NewOllamaClient(cfg.OllamaGenerateURL, cfg.OllamaTagsURL,
		cfg.GenerateTimeout, cfg.TagsTimeout)

	// Rebuilds the global graph now if it grew past the byte threshold,
	// instead of paying for it on the first request.
	if _, err := graphs.Load(); err != nil {
		log.Warn("Startup graph check failed", zap.Error(err))
	}

	app := server.New(cfg, chats, graphs, settings, queue, backend)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: app.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", zap.Error(err))
	}
	log.Info("Server exited")
}
