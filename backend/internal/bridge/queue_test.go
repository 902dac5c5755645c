package bridge

import (
	"testing"
	"time"

	"graphchat/backend/internal/store"
)

func newTestQueue(t *testing.T) (*RelayQueue, *store.ChatStore) {
	t.Helper()
	dir := t.TempDir()
	chats, err := store.NewChatStore(dir)
	if err != nil {
		t.Fatalf("NewChatStore failed: %v", err)
	}
	return NewRelayQueue(dir, chats), chats
}

func TestRelayQueue_EnqueueDequeue(t *testing.T) {
	q, _ := newTestQueue(t)

	if err := q.Enqueue("c1", "Grok", "ping"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if count := q.OutboxCount(); count != 1 {
		t.Fatalf("outbox count = %d, want 1", count)
	}

	item, err := q.Dequeue("Grok")
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if item == nil {
		t.Fatal("expected an item")
	}
	if item.ChatID != "c1" || item.Source != "Grok" || item.Text != "ping" {
		t.Errorf("item mismatch: %+v", item)
	}
	if item.TS <= 0 {
		t.Errorf("timestamp not set: %f", item.TS)
	}
	if count := q.OutboxCount(); count != 0 {
		t.Errorf("outbox count after dequeue = %d, want 0", count)
	}
}

func TestRelayQueue_DequeueFilterPreservesOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	q.Enqueue("c1", "Grok", "first")
	q.Enqueue("c2", "Gemini", "second")
	q.Enqueue("c3", "Grok", "third")

	item, _ := q.Dequeue("Gemini")
	if item == nil || item.Text != "second" {
		t.Fatalf("expected the Gemini item, got %+v", item)
	}

	// remaining items keep their relative order
	first, _ := q.Dequeue("")
	second, _ := q.Dequeue("")
	if first == nil || first.Text != "first" {
		t.Errorf("order broken: first = %+v", first)
	}
	if second == nil || second.Text != "third" {
		t.Errorf("order broken: second = %+v", second)
	}
}

func TestRelayQueue_DequeueEmpty(t *testing.T) {
	q, _ := newTestQueue(t)
	item, err := q.Dequeue("")
	if err != nil {
		t.Fatalf("Dequeue on empty outbox errored: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil item, got %+v", item)
	}
}

func TestRelayQueue_DequeueNoMatch(t *testing.T) {
	q, _ := newTestQueue(t)
	q.Enqueue("c1", "Grok", "ping")
	item, err := q.Dequeue("Gemini")
	if err != nil {
		t.Fatalf("Dequeue errored: %v", err)
	}
	if item != nil {
		t.Errorf("expected no match, got %+v", item)
	}
	if count := q.OutboxCount(); count != 1 {
		t.Errorf("non-matching dequeue must not consume, count = %d", count)
	}
}

func TestRelayQueue_IngestAnswer(t *testing.T) {
	q, chats := newTestQueue(t)
	chat, _ := chats.Create()

	updated, err := q.IngestAnswer(chat.ID, "Grok", "pong")
	if err != nil {
		t.Fatalf("IngestAnswer failed: %v", err)
	}
	if len(updated.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(updated.Messages))
	}
	msg := updated.Messages[0]
	if msg.Role != store.RoleAssistant {
		t.Errorf("role = %s, want assistant", msg.Role)
	}
	if msg.Content != "[Grok] pong" {
		t.Errorf("content = %q, want tagged answer", msg.Content)
	}

	last := q.LastInbox()
	if last == nil {
		t.Fatal("inbox empty after ingest")
	}
	if last.ChatID != chat.ID || last.Source != "Grok" || last.Text != "pong" {
		t.Errorf("inbox entry mismatch: %+v", last)
	}
}

func TestRelayQueue_InboxIsAppendOnly(t *testing.T) {
	q, chats := newTestQueue(t)
	chat, _ := chats.Create()
	q.IngestAnswer(chat.ID, "Grok", "one")
	q.IngestAnswer(chat.ID, "Gemini", "two")

	last := q.LastInbox()
	if last == nil || last.Text != "two" {
		t.Errorf("expected latest entry, got %+v", last)
	}
}

func TestRelayQueue_LastInboxEmpty(t *testing.T) {
	q, _ := newTestQueue(t)
	if last := q.LastInbox(); last != nil {
		t.Errorf("expected nil on empty inbox, got %+v", last)
	}
}

func TestRelayQueue_TimestampsMonotonic(t *testing.T) {
	q, _ := newTestQueue(t)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }
	q.Enqueue("c1", "Grok", "first")
	q.now = func() time.Time { return base.Add(time.Second) }
	q.Enqueue("c1", "Grok", "second")

	a, _ := q.Dequeue("")
	b, _ := q.Dequeue("")
	if a.TS >= b.TS {
		t.Errorf("timestamps not increasing: %f >= %f", a.TS, b.TS)
	}
}
