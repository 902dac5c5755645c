// Package server is the HTTP boundary: it validates requests, drives the
// stores and the relay queue, and talks to the inference backend for the
// local source.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"graphchat/backend/internal/bridge"
	"graphchat/backend/internal/graph"
	"graphchat/backend/internal/store"
	"graphchat/backend/pkg/config"
	"graphchat/backend/pkg/logger"
)

// Generator is the consumed contract of the inference backend.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
	ListModels(ctx context.Context) []string
}

// Server is the application context handed to every handler. It is
// constructed once at startup; there is no package-level mutable state.
type Server struct {
	cfg       *config.Config
	chats     *store.ChatStore
	graphs    *store.GraphStore
	settings  *store.ConfigStore
	queue     *bridge.RelayQueue
	backend   Generator
	startedAt time.Time
	logger    *zap.Logger
}

// New wires the application context.
func New(cfg *config.Config, chats *store.ChatStore, graphs *store.GraphStore,
	settings *store.ConfigStore, queue *bridge.RelayQueue, backend Generator) *Server {
	return &Server{
		cfg:       cfg,
		chats:     chats,
		graphs:    graphs,
		settings:  settings,
		queue:     queue,
		backend:   backend,
		startedAt: time.Now(),
		logger:    logger.Get(),
	}
}

// Router builds the gin engine with middleware and all API routes.
func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(noStore())

	api := router.Group("/api")
	{
		api.GET("/status", s.handleStatus)

		api.GET("/chats", s.handleListChats)
		api.GET("/chat/:id", s.handleGetChat)
		api.POST("/chat/new", s.handleNewChat)
		api.POST("/chat/send", s.handleSend)

		api.GET("/models", s.handleListModels)
		api.POST("/models/add", s.handleAddModel)
		api.POST("/models/last", s.handleSetLastModel)

		api.GET("/sources", s.handleListSources)
		api.POST("/sources/add", s.handleAddSource)
		api.POST("/sources/last", s.handleSetLastSource)

		api.GET("/bridge/outbox/next", s.handleOutboxNext)
		api.GET("/bridge/outbox/count", s.handleOutboxCount)
		api.POST("/bridge/outbox/enqueue", s.handleOutboxEnqueue)
		api.POST("/bridge/ingest", s.handleIngest)
		api.GET("/bridge/inbox/last", s.handleInboxLast)
		api.GET("/bridge/target", s.handleGetBridgeTarget)
		api.POST("/bridge/target/set", s.handleSetBridgeTarget)

		api.POST("/graph/reset", s.handleGraphReset)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

// sessionGraph derives the compacted session graph from a chat's full
// message list.
func (s *Server) sessionGraph(chat *store.Chat) *graph.Graph {
	return graph.Compact(graph.Build(chat.Texts()),
		s.cfg.MaxSessionNodes, s.cfg.MaxSessionEdges)
}

// updateGraphs recomputes the session graph and folds it into the global
// one. Failures to persist the global graph are logged but do not fail
// the request; the caller still gets consistent graphs to render.
func (s *Server) updateGraphs(chat *store.Chat) (*graph.Graph, *graph.Graph) {
	session := s.sessionGraph(chat)
	global, err := s.graphs.MergeAndPersist(session)
	if err != nil {
		s.logger.Error("global graph persist failed", zap.Error(err))
		global = graph.New()
	}
	return session, global
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"started_at": float64(s.startedAt.UnixNano()) / float64(time.Second),
		"pid":        pid(),
		"uptime_sec": time.Since(s.startedAt).Seconds(),
	})
}
