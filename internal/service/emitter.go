package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter: decouples services from the presentation layer
// ─────────────────────────────────────────────────────────────

// EventEmitter delivers events (notifications, page changes) to whoever
// presents the editor. Services receive this interface so they stay
// testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Events emitted by the services.
const (
	EventNotification = "notification"
	EventPageChanged  = "page:changed"
	EventZoomChanged  = "zoom:changed"
)

// Notification levels.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is a short user-facing message.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// PageChange is emitted whenever the current page or page count changes.
type PageChange struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

func notify(ctx context.Context, e EventEmitter, level, msg string) {
	if e == nil {
		return
	}
	e.Emit(ctx, EventNotification, Notification{Level: level, Message: msg})
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Notifications returns the recorded notifications in order.
func (m *MockEmitter) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Notification
	for _, e := range m.Events {
		if n, ok := e.Data.(Notification); ok && e.Event == EventNotification {
			out = append(out, n)
		}
	}
	return out
}

// LogEmitter writes events to a zap logger. Used when no UI is attached.
type LogEmitter struct {
	Logger *zap.Logger
}

func (l LogEmitter) Emit(_ context.Context, event string, data any) {
	if n, ok := data.(Notification); ok {
		switch n.Level {
		case LevelError:
			l.Logger.Error(n.Message)
		case LevelWarning:
			l.Logger.Warn(n.Message)
		default:
			l.Logger.Info(n.Message)
		}
		return
	}
	l.Logger.Debug("event", zap.String("event", event), zap.Any("data", data))
}
