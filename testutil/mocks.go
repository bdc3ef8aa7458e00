package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// MockOMDBServer creates a test server that mocks OMDb API responses keyed by
// the title query parameter. It counts requests so tests can assert that the
// lookup cache suppressed provider calls.
type MockOMDBServer struct {
	*httptest.Server
	mu        sync.Mutex
	responses map[string]map[string]string
	calls     atomic.Int64
}

// NewMockOMDBServer creates a new mock OMDb API server.
func NewMockOMDBServer(t *testing.T) *MockOMDBServer {
	t.Helper()
	m := &MockOMDBServer{responses: make(map[string]map[string]string)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.calls.Add(1)
		title := r.URL.Query().Get("t")
		m.mu.Lock()
		resp, ok := m.responses[title]
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			resp = map[string]string{"Response": "False", "Error": "Movie not found!"}
		}
		_ = json.NewEncoder(w).Encode(resp) //nolint:errcheck // test mock response
	}))
	t.Cleanup(m.Close)
	return m
}

// MockTitle registers a positive response for a title query.
func (m *MockOMDBServer) MockTitle(title string, fields map[string]string) {
	resp := map[string]string{"Response": "True", "Title": title}
	for k, v := range fields {
		resp[k] = v
	}
	m.mu.Lock()
	m.responses[title] = resp
	m.mu.Unlock()
}

// Calls returns the number of provider requests served so far.
func (m *MockOMDBServer) Calls() int64 { return m.calls.Load() }

// MockTelegramServer mocks the Telegram Bot API surface the bot uses
// (getUpdates, sendMessage, sendPhoto) and records every outbound send.
type MockTelegramServer struct {
	*httptest.Server
	mu      sync.Mutex
	updates []map[string]interface{}
	Sent    []SentMessage
}

// SentMessage is one recorded sendMessage/sendPhoto call.
type SentMessage struct {
	Method    string // "sendMessage" | "sendPhoto"
	ChatID    string
	Text      string // text or caption
	PhotoURL  string
	ParseMode string
}

// NewMockTelegramServer creates a new mock Bot API server. Updates queued via
// QueueUpdate are drained by the first getUpdates call; later polls return empty.
func NewMockTelegramServer(t *testing.T) *MockTelegramServer {
	t.Helper()
	m := &MockTelegramServer{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			m.mu.Lock()
			batch := m.updates
			m.updates = nil
			m.mu.Unlock()
			if batch == nil {
				batch = []map[string]interface{}{}
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": batch}) //nolint:errcheck
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			m.record(SentMessage{
				Method: "sendMessage", ChatID: r.Form.Get("chat_id"),
				Text: r.Form.Get("text"), ParseMode: r.Form.Get("parse_mode"),
			})
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": map[string]int{"message_id": 1}}) //nolint:errcheck
		case strings.HasSuffix(r.URL.Path, "/sendPhoto"):
			m.record(SentMessage{
				Method: "sendPhoto", ChatID: r.Form.Get("chat_id"),
				Text: r.Form.Get("caption"), PhotoURL: r.Form.Get("photo"), ParseMode: r.Form.Get("parse_mode"),
			})
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": map[string]int{"message_id": 2}}) //nolint:errcheck
		default:
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "description": "unknown method"}) //nolint:errcheck
		}
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *MockTelegramServer) record(s SentMessage) {
	m.mu.Lock()
	m.Sent = append(m.Sent, s)
	m.mu.Unlock()
}

// QueueUpdate enqueues a text message update to be returned by the next getUpdates.
func (m *MockTelegramServer) QueueUpdate(updateID int64, chatID, userID int64, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, map[string]interface{}{
		"update_id": updateID,
		"message": map[string]interface{}{
			"message_id": updateID,
			"text":       text,
			"chat":       map[string]interface{}{"id": chatID},
			"from":       map[string]interface{}{"id": userID},
		},
	})
}

// SentMessages returns a snapshot of everything sent so far.
func (m *MockTelegramServer) SentMessages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}
