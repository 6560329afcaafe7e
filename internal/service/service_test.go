package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvasdoc/internal/domain"
	"canvasdoc/internal/service"
)

func waitEntered(t *testing.T, store *memStore) {
	t.Helper()
	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("autosave never reached the store")
	}
}

func TestAutosaver_SavesProject(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := startEditor(t, store, nil)
	f.editor.AddNewPage(ctx)
	a := &service.Autosaver{Editor: f.editor, Guard: &service.JobGuard{}}

	assert.True(t, a.Run(ctx))
	data, found, err := store.Load(ctx, domain.DefaultProjectKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, data, `"currentPageIndex":1`)
}

func TestAutosaver_SkipsOverlappingRun(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := startEditor(t, store, nil)
	release := store.hold()
	t.Cleanup(release)
	a := &service.Autosaver{Editor: f.editor, Guard: &service.JobGuard{}}

	first := make(chan bool)
	go func() { first <- a.Run(ctx) }()
	waitEntered(t, store)

	assert.False(t, a.Run(ctx), "a save is already in flight")
	release()
	assert.True(t, <-first)
	assert.Equal(t, 1, store.saveCount())

	assert.True(t, a.Run(ctx), "the next tick runs again")
	assert.Equal(t, 2, store.saveCount())
}

func TestAutosaver_FailureReleasesGuard(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := startEditor(t, store, nil)
	store.saveErr = errStoreDown
	a := &service.Autosaver{Editor: f.editor, Guard: &service.JobGuard{}}

	assert.True(t, a.Run(ctx))
	assert.Equal(t, service.Notification{Level: service.LevelError, Message: "Error saving project"}, lastNotification(t, f.emitter))

	store.saveErr = nil
	assert.True(t, a.Run(ctx))
	assert.Equal(t, 1, store.saveCount())
}

func TestJobGuard_WaitAllDrainsAutosave(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	f := startEditor(t, store, nil)
	release := store.hold()
	t.Cleanup(release)
	guard := &service.JobGuard{}
	a := &service.Autosaver{Editor: f.editor, Guard: guard}

	go a.Run(ctx)
	waitEntered(t, store)

	drained := make(chan struct{})
	go func() {
		guard.WaitAll(ctx)
		close(drained)
	}()
	select {
	case <-drained:
		t.Fatal("WaitAll returned while autosave was still saving")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("WaitAll did not return after autosave finished")
	}
	assert.Equal(t, 1, store.saveCount())
}

func TestJobGuard_WaitAllStopsAtDeadline(t *testing.T) {
	store := newMemStore()
	f := startEditor(t, store, nil)
	release := store.hold()
	t.Cleanup(release)
	guard := &service.JobGuard{}
	a := &service.Autosaver{Editor: f.editor, Guard: guard}

	go a.Run(context.Background())
	waitEntered(t, store)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	guard.WaitAll(ctx)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, store.saveCount())
}
