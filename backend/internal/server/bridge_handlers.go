package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) handleOutboxNext(c *gin.Context) {
	source := strings.TrimSpace(c.Query("source"))
	item, err := s.queue.Dequeue(source)
	if err != nil {
		s.logger.Error("outbox dequeue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dequeue"})
		return
	}
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"item": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (s *Server) handleOutboxCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": s.queue.OutboxCount()})
}

func (s *Server) handleOutboxEnqueue(c *gin.Context) {
	var req struct {
		ChatID string `json:"chat_id"`
		Source string `json:"source"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ChatID = strings.TrimSpace(req.ChatID)
	req.Source = strings.TrimSpace(req.Source)
	req.Text = strings.TrimSpace(req.Text)
	if req.ChatID == "" || req.Source == "" || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chat_id/source/text"})
		return
	}
	if err := s.queue.Enqueue(req.ChatID, req.Source, req.Text); err != nil {
		s.logger.Error("outbox enqueue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// handleIngest posts a manually relayed external answer into a chat.
// Target resolution: explicit chat_id, else the configured bridge target,
// else the most recent chat.
func (s *Server) handleIngest(c *gin.Context) {
	var req struct {
		ChatID string `json:"chat_id"`
		Source string `json:"source"`
		Text   string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chatID := strings.TrimSpace(req.ChatID)
	if chatID == "" {
		chatID = strings.TrimSpace(s.settings.Get().BridgeTarget)
	}
	if chatID == "" {
		if ids, err := s.chats.List(); err == nil && len(ids) > 0 {
			chatID = ids[0]
		}
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "Bridge"
	}
	text := strings.TrimSpace(req.Text)
	if chatID == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chat_id or text"})
		return
	}

	chat, err := s.queue.IngestAnswer(chatID, source, text)
	if err != nil {
		s.logger.Error("bridge ingest failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest"})
		return
	}

	session, global := s.updateGraphs(chat)
	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"chat":          chat,
		"session_graph": session,
		"global_graph":  global,
	})
}

func (s *Server) handleInboxLast(c *gin.Context) {
	item := s.queue.LastInbox()
	if item == nil {
		c.JSON(http.StatusOK, gin.H{"last": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"last": item})
}

func (s *Server) handleGetBridgeTarget(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bridge_target": s.settings.Get().BridgeTarget})
}

func (s *Server) handleSetBridgeTarget(c *gin.Context) {
	var req struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	chatID := strings.TrimSpace(req.ChatID)
	if chatID == "" {
		// nothing to set, report the current target
		c.JSON(http.StatusOK, gin.H{"ok": true, "bridge_target": s.settings.Get().BridgeTarget})
		return
	}
	settings, err := s.settings.SetBridgeTarget(chatID)
	if err != nil {
		s.logger.Error("setting bridge target failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bridge_target": settings.BridgeTarget})
}
