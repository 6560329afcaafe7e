package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ─────────────────────────────────────────────────────────────
// JobGuard: one run per job name at a time
// ─────────────────────────────────────────────────────────────

// JobGuard skips a job while a previous run of the same name is still going.
// The zero value is ready to use.
type JobGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks name as running. Returns false if it already is.
func (g *JobGuard) TryLock(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[name]; ok {
		return false
	}
	g.running[name] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock ends a run started by a successful TryLock.
func (g *JobGuard) Unlock(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, name)
	g.wg.Done()
}

// WaitAll blocks until running jobs finish or ctx is done.
func (g *JobGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// ── Autosave ───────────────────────────────────────────────

const autosaveJob = "autosave"

// Autosaver persists the project on a schedule. Overlapping runs are skipped.
type Autosaver struct {
	Editor *Editor
	Guard  *JobGuard
	Logger *zap.Logger
}

// Run saves the project unless a save is already in flight. Reports whether
// it ran.
func (a *Autosaver) Run(ctx context.Context) bool {
	if !a.Guard.TryLock(autosaveJob) {
		a.logger().Debug("autosave skipped, previous run still active")
		return false
	}
	defer a.Guard.Unlock(autosaveJob)

	if err := a.Editor.SaveProject(ctx); err != nil {
		a.logger().Warn("autosave failed", zap.Error(err))
	}
	return true
}

func (a *Autosaver) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
