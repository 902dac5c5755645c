package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"graphchat/backend/internal/graph"
	"graphchat/backend/internal/store"
	"graphchat/backend/pkg/config"
	"graphchat/backend/pkg/logger"
)

// Demo conversations for a fresh data directory.
var seedChats = [][]store.Message{
	{
		{Role: store.RoleUser, Content: "Какие графы строятся из переписки?"},
		{Role: store.RoleAssistant, Content: "Граф совместной встречаемости токенов: узлы и рёбра с весами."},
	},
	{
		{Role: store.RoleUser, Content: "How does the global graph stay bounded?"},
		{Role: store.RoleAssistant, Content: "It is compacted to node and edge caps after every merge."},
	},
}

func main() {
	skipGraphs := flag.Bool("skip-graphs", false, "Seed chats only, leave the global graph untouched")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting data seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

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

	for _, messages := range seedChats {
		chat, err := chats.Create()
		if err != nil {
			log.Fatal("Failed to create chat", zap.Error(err))
		}
		for _, msg := range messages {
			if chat, err = chats.Append(chat.ID, msg); err != nil {
				log.Fatal("Failed to append message", zap.String("chat_id", chat.ID), zap.Error(err))
			}
		}
		log.Info("Chat seeded", zap.String("chat_id", chat.ID), zap.Int("messages", len(chat.Messages)))

		if *skipGraphs {
			continue
		}
		session := graph.Compact(graph.Build(chat.Texts()), cfg.MaxSessionNodes, cfg.MaxSessionEdges)
		if _, err := graphs.MergeAndPersist(session); err != nil {
			log.Fatal("Failed to merge session graph", zap.String("chat_id", chat.ID), zap.Error(err))
		}
	}

	global, err := graphs.Load()
	if err != nil {
		log.Error("Failed to load global graph", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Seeding complete",
		zap.Int("chats", len(seedChats)),
		zap.Int("nodes", len(global.Nodes)),
		zap.Int("edges", len(global.Edges)))
}
