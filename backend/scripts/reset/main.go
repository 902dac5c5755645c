package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"graphchat/backend/internal/store"
	"graphchat/backend/pkg/config"
	"graphchat/backend/pkg/logger"
)

func main() {
	skipConfirm := flag.Bool("y", false, "Skip confirmation prompt")
	keepConfig := flag.Bool("keep-config", false, "Keep config.json (models, sources, bridge target)")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting data reset...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Warning prompt
	if !*skipConfirm {
		log.Warn("⚠️  WARNING: This will DELETE ALL CHATS AND GRAPHS!", zap.String("data_dir", cfg.DataDir))
		log.Warn("This action cannot be undone.")
		// Use fmt.Print for user input prompt (needs to go to stdout)
		fmt.Print("Are you sure you want to continue? (yes/no): ")
		var response string
		fmt.Scanln(&response)
		if response != "yes" && response != "y" {
			log.Info("Reset cancelled")
			os.Exit(0)
		}
	}

	chats, err := store.NewChatStore(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize chat store", zap.Error(err))
	}
	ids, err := chats.List()
	if err != nil {
		log.Fatal("Failed to list chats", zap.Error(err))
	}
	for _, id := range ids {
		if err := chats.Delete(id); err != nil {
			log.Fatal("Failed to delete chat", zap.String("chat_id", id), zap.Error(err))
		}
	}
	log.Info("Chats deleted", zap.Int("count", len(ids)))

	graphs := store.NewGraphStore(cfg.DataDir, chats, store.GraphLimits{
		MaxFileBytes: cfg.MaxGraphFileBytes,
		MaxNodes:     cfg.MaxGlobalNodes,
		MaxEdges:     cfg.MaxGlobalEdges,
	})
	if err := graphs.Reset(); err != nil {
		log.Fatal("Failed to reset global graph", zap.Error(err))
	}
	log.Info("Global graph reset")

	for _, name := range []string{"bridge_outbox.json", "bridge_inbox.json"} {
		path := filepath.Join(cfg.DataDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatal("Failed to remove queue file", zap.String("path", path), zap.Error(err))
		}
	}
	log.Info("Bridge queues cleared")

	if !*keepConfig {
		path := filepath.Join(cfg.DataDir, "config.json")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatal("Failed to remove config", zap.String("path", path), zap.Error(err))
		}
		log.Info("Config reset to defaults")
	}

	log.Info("Reset complete")
}
