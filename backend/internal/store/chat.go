package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "graphchat/backend/pkg/errors"
	"graphchat/backend/pkg/logger"

	"go.uber.org/zap"
)

// Message roles. Messages are appended by users and answered by
// assistants; no other roles exist in the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultChatTitle is the title of a chat before its first user message.
const DefaultChatTitle = "Новый чат"

// Message is one transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat is a persisted conversation. Messages are append-only and their
// order is the conversation order.
type Chat struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// Texts returns the message contents in conversation order.
func (c *Chat) Texts() []string {
	out := make([]string, 0, len(c.Messages))
	for _, m := range c.Messages {
		out = append(out, m.Content)
	}
	return out
}

// Summary is the list-view projection of a chat.
type Summary struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Preview      string   `json:"preview"`
	Sources      []string `json:"sources"`
	UpdatedTS    float64  `json:"updated_ts"`
	MessageCount int      `json:"message_count"`
}

// ErrChatNotFound is returned by Get for ids with no persisted document.
var ErrChatNotFound = apperrors.NotFound("chat")

// ChatStore owns the per-conversation message logs under <dir>/chats.
// One store-wide mutex serializes read-modify-write cycles; per-chat
// locking is not worth it at this scale.
type ChatStore struct {
	dir    string
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

// NewChatStore creates the chats directory if needed.
func NewChatStore(dataDir string) (*ChatStore, error) {
	dir := filepath.Join(dataDir, "chats")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chats dir: %w", err)
	}
	return &ChatStore{dir: dir, now: time.Now, logger: logger.Get()}, nil
}

func (s *ChatStore) path(chatID string) string {
	return filepath.Join(s.dir, chatID+".json")
}

// newChatID derives a lexicographically sortable id from the clock.
// Within one second, ids get a numeric suffix to stay unique.
func (s *ChatStore) newChatID() string {
	base := s.now().Format("20060102-150405")
	id := base
	for n := 1; ; n++ {
		if _, err := os.Stat(s.path(id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Create allocates a new chat id from the current time and persists an
// empty chat.
func (s *ChatStore) Create() (*Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := &Chat{ID: s.newChatID(), Title: DefaultChatTitle, Messages: []Message{}}
	if err := WriteJSON(s.path(chat.ID), chat); err != nil {
		return nil, err
	}
	s.logger.Debug("chat created", zap.String("chat_id", chat.ID))
	return chat, nil
}

// loadOrDefault reads the chat document, substituting an empty chat when
// the file is missing or corrupt. Corruption is logged, not propagated:
// the conversation must stay usable.
func (s *ChatStore) loadOrDefault(chatID string) *Chat {
	chat := &Chat{ID: chatID, Title: DefaultChatTitle, Messages: []Message{}}
	if err := ReadJSON(s.path(chatID), chat); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("chat document unreadable, using empty chat",
				zap.String("chat_id", chatID), zap.Error(err))
		}
		return &Chat{ID: chatID, Title: DefaultChatTitle, Messages: []Message{}}
	}
	return chat
}

// Append adds a message to the chat and persists the whole document.
// A missing document is treated as an empty chat, never as an error.
func (s *ChatStore) Append(chatID string, msg Message) (*Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.loadOrDefault(chatID)
	chat.Messages = append(chat.Messages, msg)
	if err := WriteJSON(s.path(chatID), chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Get returns the chat or ErrChatNotFound.
func (s *ChatStore) Get(chatID string) (*Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := &Chat{}
	if err := ReadJSON(s.path(chatID), chat); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrChatNotFound
		}
		s.logger.Warn("chat document unreadable",
			zap.String("chat_id", chatID), zap.Error(err))
		return nil, ErrChatNotFound
	}
	return chat, nil
}

// List returns all known chat ids, most recent first. Ids are
// time-derived, so reverse lexicographic order is reverse chronological.
func (s *ChatStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read chats dir: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Delete removes the persisted chat. Deleting a nonexistent chat is not
// an error.
func (s *ChatStore) Delete(chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(chatID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete chat %s: %w", chatID, err)
	}
	return nil
}

// Summaries returns the list-view projection of every chat, most recent
// first.
func (s *ChatStore) Summaries() ([]Summary, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		s.mu.Lock()
		chat := s.loadOrDefault(id)
		s.mu.Unlock()

		var updated float64
		if info, err := os.Stat(s.path(id)); err == nil {
			updated = float64(info.ModTime().UnixNano()) / float64(time.Second)
		}
		out = append(out, Summary{
			ID:           id,
			Title:        chatTitle(chat),
			Preview:      chatPreview(chat),
			Sources:      chatSources(chat),
			UpdatedTS:    updated,
			MessageCount: len(chat.Messages),
		})
	}
	return out, nil
}

var sentenceEnd = regexp.MustCompile(`[.!?]\s+`)

// splitSentences cuts text after sentence-final punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	matches := sentenceEnd.FindAllStringIndex(text, -1)
	out := []string{}
	prev := 0
	for _, m := range matches {
		// m[0] is the punctuation rune; the sentence ends just after it
		out = append(out, text[prev:m[0]+1])
		prev = m[1]
	}
	if prev < len(text) {
		out = append(out, text[prev:])
	}
	return out
}

// chatPreview derives the list preview: first user message (else the very
// first message), newlines collapsed, first two sentences, capped at 200
// runes with an ellipsis.
func chatPreview(chat *Chat) string {
	text := ""
	for _, m := range chat.Messages {
		if m.Role == RoleUser {
			text = m.Content
			break
		}
	}
	if text == "" && len(chat.Messages) > 0 {
		text = chat.Messages[0].Content
	}
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if text == "" {
		return ""
	}
	sentences := splitSentences(text)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	preview := strings.TrimSpace(strings.Join(sentences, " "))
	if runes := []rune(preview); len(runes) > 200 {
		preview = strings.TrimRight(string(runes[:200]), " ") + "…"
	}
	return preview
}

// chatTitle derives the list title: the first six words of the preview,
// else the stored title, else the default.
func chatTitle(chat *Chat) string {
	if preview := chatPreview(chat); preview != "" {
		words := strings.Fields(preview)
		if len(words) > 6 {
			words = words[:6]
		}
		if title := strings.TrimSpace(strings.Join(words, " ")); title != "" {
			return title
		}
	}
	if chat.Title != "" {
		return chat.Title
	}
	return DefaultChatTitle
}

// ParseSource extracts the source tag from an assistant message rendered
// as "[Source] text". Untagged answers came from the local backend.
func ParseSource(content string) string {
	if strings.HasPrefix(content, "[") {
		head := content
		if len(head) > 40 {
			head = head[:40]
		}
		if i := strings.Index(head, "]"); i > 0 {
			return content[1:i]
		}
	}
	return "Local"
}

// chatSources lists the distinct answer sources seen in the chat, sorted.
func chatSources(chat *Chat) []string {
	seen := map[string]struct{}{}
	for _, m := range chat.Messages {
		if m.Role == RoleAssistant {
			seen[ParseSource(m.Content)] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
