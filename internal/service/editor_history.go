package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"canvasdoc/internal/domain"
)

// ============================================================
// Undo Tree
// ============================================================

// track runs a scene mutation and records the resulting page state as a
// history checkpoint. The first checkpoint of a page is preceded by an
// "Initial" root holding the state before the mutation.
func (e *Editor) track(ctx context.Context, label string, mutate func()) {
	if e.history == nil {
		mutate()
		return
	}
	if page, ok := e.docs.CurrentPage(); ok {
		tree, err := e.history.LoadTree(page.ID)
		if err != nil {
			e.logger.Warn("load history", zap.Error(err))
		} else if tree == nil {
			e.checkpoint("Initial", "")
		}
	}
	mutate()
	e.checkpoint(label, "")
}

// Checkpoint records the current page state under label.
func (e *Editor) Checkpoint(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.history == nil {
		return nil
	}
	return e.checkpoint(label, "")
}

func (e *Editor) checkpoint(label, parentID string) error {
	e.docs.SaveCurrentPage()
	page, ok := e.docs.CurrentPage()
	if !ok {
		return nil
	}
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if parentID == "" {
		if tree, err := e.history.LoadTree(page.ID); err == nil && tree != nil {
			parentID = tree.CurrentID
		}
	}
	if _, err := e.history.PushNode(page.ID, uuid.New().String(), parentID, label, string(data)); err != nil {
		e.logger.Warn("push history node", zap.String("label", label), zap.Error(err))
		return fmt.Errorf("push checkpoint: %w", err)
	}
	return nil
}

// History returns the undo tree of the current page.
func (e *Editor) History() (*domain.HistoryTree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.history == nil {
		return nil, nil
	}
	page, ok := e.docs.CurrentPage()
	if !ok {
		return nil, nil
	}
	return e.history.LoadTree(page.ID)
}

// Undo restores the parent of the current checkpoint. Reports whether
// anything changed.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(ctx, func(tree *domain.HistoryTree, cur domain.HistoryNode) (domain.HistoryNode, bool) {
		if cur.ParentID == nil {
			return domain.HistoryNode{}, false
		}
		return tree.Node(*cur.ParentID)
	}, "Undo")
}

// Redo restores the most recent child of the current checkpoint.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(ctx, func(tree *domain.HistoryTree, cur domain.HistoryNode) (domain.HistoryNode, bool) {
		return tree.LatestChild(cur.ID)
	}, "Redo")
}

func (e *Editor) step(ctx context.Context, pick func(*domain.HistoryTree, domain.HistoryNode) (domain.HistoryNode, bool), verb string) (bool, error) {
	if e.history == nil {
		return false, nil
	}
	page, ok := e.docs.CurrentPage()
	if !ok {
		return false, nil
	}
	tree, err := e.history.LoadTree(page.ID)
	if err != nil || tree == nil {
		return false, err
	}
	cur, ok := tree.Node(tree.CurrentID)
	if !ok {
		return false, nil
	}
	target, ok := pick(tree, cur)
	if !ok {
		return false, nil
	}

	var restored domain.Page
	if err := json.Unmarshal([]byte(target.Snapshot), &restored); err != nil {
		return false, fmt.Errorf("decode checkpoint %s: %w", target.ID, err)
	}
	e.endDrag()
	if err := e.docs.RestorePage(restored); err != nil {
		return false, fmt.Errorf("restore checkpoint %s: %w", target.ID, err)
	}
	if err := e.history.GoTo(page.ID, target.ID); err != nil {
		return false, fmt.Errorf("move history cursor: %w", err)
	}
	notify(ctx, e.emitter, LevelSuccess, fmt.Sprintf("%s: %s", verb, cur.Label))
	return true, nil
}
