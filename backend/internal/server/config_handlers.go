package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleListModels merges the backend's advertised models with the
// manually added ones, auto-discovered first, deduplicated.
func (s *Server) handleListModels(c *gin.Context) {
	auto := s.backend.ListModels(c.Request.Context())
	settings := s.settings.Get()

	models := []string{}
	seen := map[string]struct{}{}
	for _, m := range append(auto, settings.ManualModels...) {
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		models = append(models, m)
	}
	if len(models) == 0 {
		models = []string{s.cfg.DefaultModel}
	}

	last := settings.LastModel
	if last == "" {
		last = models[0]
	}
	c.JSON(http.StatusOK, gin.H{"models": models, "last": last})
}

func (s *Server) handleAddModel(c *gin.Context) {
	name, ok := s.bindName(c)
	if !ok {
		return
	}
	if err := s.settings.AddModel(name); err != nil {
		s.logger.Error("adding model failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleSetLastModel(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settings.SetLastModel(strings.TrimSpace(req.Name)); err != nil {
		s.logger.Error("setting last model failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleListSources(c *gin.Context) {
	settings := s.settings.Get()
	c.JSON(http.StatusOK, gin.H{"sources": settings.Sources, "last": settings.LastSource})
}

func (s *Server) handleAddSource(c *gin.Context) {
	name, ok := s.bindName(c)
	if !ok {
		return
	}
	if err := s.settings.AddSource(name); err != nil {
		s.logger.Error("adding source failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleSetLastSource(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.settings.SetLastSource(strings.TrimSpace(req.Name)); err != nil {
		s.logger.Error("setting last source failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleGraphReset(c *gin.Context) {
	if err := s.graphs.Reset(); err != nil {
		s.logger.Error("graph reset failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset graph"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// bindName binds the {name} payload shared by the add-model and
// add-source endpoints; empty names are rejected.
func (s *Server) bindName(c *gin.Context) (string, bool) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty"})
		return "", false
	}
	return name, true
}
