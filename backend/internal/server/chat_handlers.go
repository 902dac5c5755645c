package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"graphchat/backend/internal/graph"
	"graphchat/backend/internal/store"
)

func (s *Server) handleListChats(c *gin.Context) {
	summaries, err := s.chats.Summaries()
	if err != nil {
		s.logger.Error("listing chats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list chats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": summaries})
}

func (s *Server) handleGetChat(c *gin.Context) {
	chat, err := s.chats.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.logger.Error("loading chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat"})
		return
	}

	global, err := s.graphs.Load()
	if err != nil {
		s.logger.Error("loading global graph failed", zap.Error(err))
		global = graph.New()
	}
	c.JSON(http.StatusOK, gin.H{
		"id":            chat.ID,
		"title":         chat.Title,
		"messages":      chat.Messages,
		"session_graph": s.sessionGraph(chat),
		"global_graph":  graph.Compact(global, s.cfg.MaxGlobalNodes, s.cfg.MaxGlobalEdges),
	})
}

func (s *Server) handleNewChat(c *gin.Context) {
	chat, err := s.chats.Create()
	if err != nil {
		s.logger.Error("creating chat failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create chat"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

// handleSend runs the send state machine: append the user message, answer
// it (local inference or external placeholder), recompute the graphs,
// respond with the updated chat and both graphs.
func (s *Server) handleSend(c *gin.Context) {
	var req struct {
		ChatID  string `json:"chat_id"`
		Text    string `json:"text"`
		Model   string `json:"model"`
		Source  string `json:"source"`
		Enqueue bool   `json:"enqueue"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ChatID = strings.TrimSpace(req.ChatID)
	req.Text = strings.TrimSpace(req.Text)
	if req.ChatID == "" || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chat_id or text"})
		return
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.cfg.DefaultModel
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = s.cfg.LocalSource
	}

	if _, err := s.chats.Append(req.ChatID, store.Message{Role: store.RoleUser, Content: req.Text}); err != nil {
		s.logger.Error("appending user message failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist message"})
		return
	}

	var response string
	if source == s.cfg.LocalSource {
		// The chat lock is not held here: the backend call is the only
		// long-running step and must not block other writers. The request
		// context is not used; a disconnecting client does not abort the
		// call, and the answer still lands in the transcript. The client
		// timeout bounds the wait.
		answer, err := s.backend.Generate(context.Background(), model, req.Text)
		if err != nil {
			s.logger.Warn("inference backend failed, answering with error text",
				zap.String("model", model), zap.Error(err))
			response = fmt.Sprintf("Ошибка подключения к Ollama: %v", err)
		} else {
			response = answer
		}
	} else {
		response = fmt.Sprintf("[Ожидаю ответ из %s. Вставьте ответ вручную через кнопку «Добавить ответ».]", source)
		if req.Enqueue {
			if err := s.queue.Enqueue(req.ChatID, source, req.Text); err != nil {
				s.logger.Error("outbox enqueue failed", zap.Error(err))
			}
		} else {
			s.logger.Debug("outbox enqueue skipped", zap.String("source", source))
		}
	}

	chat, err := s.chats.Append(req.ChatID, store.Message{Role: store.RoleAssistant, Content: response})
	if err != nil {
		s.logger.Error("appending assistant message failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist message"})
		return
	}

	session, global := s.updateGraphs(chat)
	c.JSON(http.StatusOK, gin.H{
		"response":      response,
		"chat":          chat,
		"session_graph": session,
		"global_graph":  global,
	})
}
