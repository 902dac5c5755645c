package store

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"graphchat/backend/internal/graph"
	"graphchat/backend/pkg/logger"

	"go.uber.org/zap"
)

// GraphLimits bounds the persisted global graph and the rebuild window.
type GraphLimits struct {
	MaxFileBytes int64
	MaxNodes     int
	MaxEdges     int
	// Rebuild window: how much chat history to replay when the on-disk
	// graph grows past MaxFileBytes.
	RebuildMaxChats int
	RebuildMaxChars int
}

// GraphStore owns the persisted global graph. The single mutex guards the
// whole load-merge-compact-persist sequence so concurrent merges cannot
// lose updates.
type GraphStore struct {
	path   string
	chats  *ChatStore
	limits GraphLimits
	mu     sync.Mutex
	logger *zap.Logger
}

// NewGraphStore stores the global graph at <dataDir>/global_graph.json.
// The chat store feeds the rebuild path.
func NewGraphStore(dataDir string, chats *ChatStore, limits GraphLimits) *GraphStore {
	return &GraphStore{
		path:   filepath.Join(dataDir, "global_graph.json"),
		chats:  chats,
		limits: limits,
		logger: logger.Get(),
	}
}

// Load returns the persisted global graph. When the on-disk document
// exceeds the byte threshold it is rebuilt from recent chat history
// instead: bounded, lossy recovery in place of unbounded growth.
// A missing or corrupt file yields an empty graph.
func (s *GraphStore) Load() (*graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *GraphStore) loadLocked() (*graph.Graph, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return graph.New(), nil
	}
	if err == nil && s.limits.MaxFileBytes > 0 && info.Size() > s.limits.MaxFileBytes {
		s.logger.Info("global graph oversized, rebuilding from chat history",
			zap.Int64("bytes", info.Size()),
			zap.Int64("threshold", s.limits.MaxFileBytes))
		rebuilt := s.rebuild()
		if err := WriteJSON(s.path, rebuilt); err != nil {
			return nil, err
		}
		return rebuilt, nil
	}

	g := graph.New()
	if err := ReadJSON(s.path, g); err != nil {
		s.logger.Warn("global graph unreadable, using empty graph", zap.Error(err))
		return graph.New(), nil
	}
	if g.Nodes == nil {
		g.Nodes = map[string]int{}
	}
	if g.Edges == nil {
		g.Edges = map[string]int{}
	}
	return g, nil
}

// rebuild replays the most recent chats through the builder, stopping
// once either the chat count or the total character budget is hit.
// Chats outside the window are dropped on purpose: the cap on rebuild
// cost matters more than historical precision.
func (s *GraphStore) rebuild() *graph.Graph {
	texts := []string{}
	total := 0

	ids, err := s.chats.List()
	if err != nil {
		s.logger.Warn("listing chats for rebuild failed", zap.Error(err))
		ids = nil
	}
	if len(ids) > s.limits.RebuildMaxChats {
		ids = ids[:s.limits.RebuildMaxChats]
	}
	for _, id := range ids {
		chat, err := s.chats.Get(id)
		if err != nil {
			continue
		}
		for _, m := range chat.Messages {
			t := strings.TrimSpace(m.Content)
			if t == "" {
				continue
			}
			texts = append(texts, t)
			total += utf8.RuneCountInString(t)
			if total >= s.limits.RebuildMaxChars {
				break
			}
		}
		if total >= s.limits.RebuildMaxChars {
			break
		}
	}

	rebuilt := graph.Compact(graph.Build(texts), s.limits.MaxNodes, s.limits.MaxEdges)
	s.logger.Info("global graph rebuilt",
		zap.Int("texts", len(texts)),
		zap.Int("nodes", len(rebuilt.Nodes)),
		zap.Int("edges", len(rebuilt.Edges)))
	return rebuilt
}

// MergeAndPersist merges g into the stored graph, compacts to the global
// caps, persists and returns the result.
func (s *GraphStore) MergeAndPersist(g *graph.Graph) (*graph.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	merged := graph.Compact(graph.Merge(current, g), s.limits.MaxNodes, s.limits.MaxEdges)
	if err := WriteJSON(s.path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Reset replaces the persisted graph with an empty one.
func (s *GraphStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return WriteJSON(s.path, graph.New())
}
