package store

import (
	"os"
	"path/filepath"
	"sync"

	"graphchat/backend/pkg/logger"

	"go.uber.org/zap"
)

// DefaultSources is the initial set of answer channels: the local backend
// plus the manually operated external ones.
var DefaultSources = []string{
	"Local (Ollama)",
	"ChatGPT",
	"Grok",
	"Qwen",
	"Gemini",
	"Perplexity",
	"DeepSeek",
}

// Settings is the persisted process-wide configuration document.
type Settings struct {
	ManualModels []string `json:"manual_models"`
	LastModel    string   `json:"last_model"`
	Sources      []string `json:"sources"`
	LastSource   string   `json:"last_source"`
	BridgeTarget string   `json:"bridge_target"`
}

// ConfigStore owns <dataDir>/config.json. Every mutation persists the
// whole document.
type ConfigStore struct {
	path         string
	defaultModel string
	mu           sync.Mutex
	logger       *zap.Logger
}

// NewConfigStore stores settings at <dataDir>/config.json. defaultModel
// seeds the manual model list on first run.
func NewConfigStore(dataDir, defaultModel string) *ConfigStore {
	return &ConfigStore{
		path:         filepath.Join(dataDir, "config.json"),
		defaultModel: defaultModel,
		logger:       logger.Get(),
	}
}

func (s *ConfigStore) defaults() *Settings {
	sources := append([]string{}, DefaultSources...)
	return &Settings{
		ManualModels: []string{s.defaultModel},
		LastModel:    s.defaultModel,
		Sources:      sources,
		LastSource:   sources[0],
		BridgeTarget: "",
	}
}

func (s *ConfigStore) loadLocked() *Settings {
	settings := s.defaults()
	if err := ReadJSON(s.path, settings); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("config unreadable, using defaults", zap.Error(err))
		}
		return s.defaults()
	}
	if len(settings.Sources) == 0 {
		settings.Sources = append([]string{}, DefaultSources...)
	}
	if settings.LastSource == "" {
		settings.LastSource = settings.Sources[0]
	}
	if settings.LastModel == "" {
		settings.LastModel = s.defaultModel
	}
	return settings
}

// Get returns the current settings (defaults when nothing is persisted).
func (s *ConfigStore) Get() *Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *ConfigStore) update(mutate func(*Settings)) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.loadLocked()
	mutate(settings)
	if err := WriteJSON(s.path, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// AddModel appends a manual model name if not already present.
func (s *ConfigStore) AddModel(name string) error {
	_, err := s.update(func(c *Settings) {
		for _, m := range c.ManualModels {
			if m == name {
				return
			}
		}
		c.ManualModels = append(c.ManualModels, name)
	})
	return err
}

// SetLastModel records the most recently used model.
func (s *ConfigStore) SetLastModel(name string) error {
	_, err := s.update(func(c *Settings) {
		if name != "" {
			c.LastModel = name
		}
	})
	return err
}

// AddSource appends a source name if not already present.
func (s *ConfigStore) AddSource(name string) error {
	_, err := s.update(func(c *Settings) {
		for _, src := range c.Sources {
			if src == name {
				return
			}
		}
		c.Sources = append(c.Sources, name)
	})
	return err
}

// SetLastSource records the most recently used source.
func (s *ConfigStore) SetLastSource(name string) error {
	_, err := s.update(func(c *Settings) {
		if name != "" {
			c.LastSource = name
		}
	})
	return err
}

// SetBridgeTarget records the chat that untargeted bridge answers land in.
func (s *ConfigStore) SetBridgeTarget(chatID string) (*Settings, error) {
	return s.update(func(c *Settings) {
		if chatID != "" {
			c.BridgeTarget = chatID
		}
	})
}
