package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/scene"
	"canvasdoc/internal/service"
	"canvasdoc/internal/storage"
)

// memStore is an in-memory ProjectStore. When gate is set, Save signals
// entered and waits for gate to close before writing.
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	saves   int
	saveErr error

	gate    chan struct{}
	entered chan struct{}
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Save(_ context.Context, key, value string) error {
	if m.gate != nil {
		select {
		case m.entered <- struct{}{}:
		default:
		}
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = value
	m.saves++
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// hold makes subsequent saves block until the returned release is called.
func (m *memStore) hold() (release func()) {
	m.gate = make(chan struct{})
	m.entered = make(chan struct{}, 1)
	var once sync.Once
	return func() { once.Do(func() { close(m.gate) }) }
}

func (m *memStore) Close() error { return nil }

var errStoreDown = errors.New("store down")

func newCanvas() *scene.Canvas {
	c := scene.New(domain.PageWidth, domain.PageHeight)
	c.MarkReady()
	return c
}

type fixture struct {
	canvas  *scene.Canvas
	store   *memStore
	emitter *service.MockEmitter
	editor  *service.Editor
}

// newEditor starts an editor over an empty store without history.
func newEditor(t *testing.T) *fixture {
	t.Helper()
	return startEditor(t, newMemStore(), nil)
}

func startEditor(t *testing.T, store *memStore, history domain.HistoryStore) *fixture {
	t.Helper()
	f := &fixture{
		canvas:  newCanvas(),
		store:   store,
		emitter: &service.MockEmitter{},
	}
	f.editor = service.NewEditor(service.EditorDeps{
		Scene:   f.canvas,
		Store:   store,
		History: history,
		Emitter: f.emitter,
	})
	require.NoError(t, f.editor.Start(context.Background()))
	t.Cleanup(f.editor.Close)
	return f
}

func newHistoryStore(t *testing.T) *storage.HistoryStore {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "history.db"), dir)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return storage.NewHistoryStore(db)
}

func lastNotification(t *testing.T, m *service.MockEmitter) service.Notification {
	t.Helper()
	ns := m.Notifications()
	require.NotEmpty(t, ns)
	return ns[len(ns)-1]
}

func countByName(objs []*domain.Object, name string) int {
	n := 0
	for _, o := range objs {
		if o.Name == name {
			n++
		}
	}
	return n
}
