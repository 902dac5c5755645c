// Package bridge relays prompts to manually operated external channels.
// Pending prompts wait in an outbox consumed by the bridge client; pasted
// answers are ingested into their chat and recorded in an inbox log.
package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"graphchat/backend/internal/store"
	"graphchat/backend/pkg/logger"

	"go.uber.org/zap"
)

// Item is one outbox or inbox entry.
type Item struct {
	ChatID string  `json:"chat_id"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
	TS     float64 `json:"ts"`
}

// RelayQueue owns the outbox and inbox logs. The outbox is consumed
// destructively one item at a time; the inbox is append-only and never
// pruned. One mutex guards the pair.
type RelayQueue struct {
	outboxPath string
	inboxPath  string
	chats      *store.ChatStore
	mu         sync.Mutex
	now        func() time.Time
	logger     *zap.Logger
}

// NewRelayQueue stores the logs at <dataDir>/bridge_outbox.json and
// <dataDir>/bridge_inbox.json.
func NewRelayQueue(dataDir string, chats *store.ChatStore) *RelayQueue {
	return &RelayQueue{
		outboxPath: filepath.Join(dataDir, "bridge_outbox.json"),
		inboxPath:  filepath.Join(dataDir, "bridge_inbox.json"),
		chats:      chats,
		now:        time.Now,
		logger:     logger.Get(),
	}
}

// loadList reads a queue file; missing or corrupt files are empty lists.
func (q *RelayQueue) loadList(path string) []Item {
	items := []Item{}
	if err := store.ReadJSON(path, &items); err != nil {
		if !os.IsNotExist(err) {
			q.logger.Warn("queue file unreadable, using empty list",
				zap.String("path", path), zap.Error(err))
		}
		return []Item{}
	}
	return items
}

// Enqueue appends a pending prompt to the outbox.
func (q *RelayQueue) Enqueue(chatID, source, text string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	outbox := q.loadList(q.outboxPath)
	outbox = append(outbox, Item{
		ChatID: chatID,
		Source: source,
		Text:   text,
		TS:     unixFloat(q.now()),
	})
	if err := store.WriteJSON(q.outboxPath, outbox); err != nil {
		return err
	}
	q.logger.Info("outbox enqueued", zap.String("source", source), zap.Int("size", len(outbox)))
	return nil
}

// Dequeue removes and returns the first outbox item whose source matches
// the filter (any item when the filter is empty). The remainder keeps its
// order. No match is (nil, nil), not an error.
func (q *RelayQueue) Dequeue(source string) (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	outbox := q.loadList(q.outboxPath)
	for i, item := range outbox {
		if source != "" && item.Source != source {
			continue
		}
		picked := item
		outbox = append(outbox[:i], outbox[i+1:]...)
		if err := store.WriteJSON(q.outboxPath, outbox); err != nil {
			return nil, err
		}
		q.logger.Info("outbox dequeued",
			zap.String("source", picked.Source), zap.Int("remaining", len(outbox)))
		return &picked, nil
	}
	return nil, nil
}

// OutboxCount returns the number of pending prompts.
func (q *RelayQueue) OutboxCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.loadList(q.outboxPath))
}

// IngestAnswer appends the external answer to the target chat as an
// assistant message tagged with its source, then records it in the inbox.
func (q *RelayQueue) IngestAnswer(chatID, source, text string) (*store.Chat, error) {
	chat, err := q.chats.Append(chatID, store.Message{
		Role:    store.RoleAssistant,
		Content: fmt.Sprintf("[%s] %s", source, text),
	})
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	inbox := q.loadList(q.inboxPath)
	inbox = append(inbox, Item{
		ChatID: chatID,
		Source: source,
		Text:   text,
		TS:     unixFloat(q.now()),
	})
	if err := store.WriteJSON(q.inboxPath, inbox); err != nil {
		return nil, err
	}
	q.logger.Info("bridge answer ingested",
		zap.String("chat_id", chatID),
		zap.String("source", source),
		zap.Int("len", len(text)))
	return chat, nil
}

// LastInbox returns the most recently ingested answer, or nil.
func (q *RelayQueue) LastInbox() *Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	inbox := q.loadList(q.inboxPath)
	if len(inbox) == 0 {
		return nil
	}
	last := inbox[len(inbox)-1]
	return &last
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
