package domain

import (
	"context"
	"time"
)

// ProjectStore is a key/value store holding serialized projects.
type ProjectStore interface {
	// Load returns the value under key. found is false when the key is absent.
	Load(ctx context.Context, key string) (value string, found bool, err error)
	Save(ctx context.Context, key, value string) error
	Close() error
}

// HistoryNode is one checkpoint in a page's undo tree.
type HistoryNode struct {
	ID        string    `json:"id"`
	PageID    string    `json:"pageId"`
	ParentID  *string   `json:"parentId"`
	Label     string    `json:"label"`
	Snapshot  string    `json:"snapshot"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryTree is the full history of a page.
type HistoryTree struct {
	Nodes     []HistoryNode `json:"nodes"`
	CurrentID string        `json:"currentId"`
	RootID    string        `json:"rootId"`
}

// Node returns the node with the given ID.
func (t *HistoryTree) Node(id string) (HistoryNode, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return HistoryNode{}, false
}

// LatestChild returns the most recently created child of id.
func (t *HistoryTree) LatestChild(id string) (HistoryNode, bool) {
	var found HistoryNode
	ok := false
	for _, n := range t.Nodes {
		if n.ParentID != nil && *n.ParentID == id {
			if !ok || !n.CreatedAt.Before(found.CreatedAt) {
				found, ok = n, true
			}
		}
	}
	return found, ok
}

// HistoryStore persists per-page undo trees.
type HistoryStore interface {
	LoadTree(pageID string) (*HistoryTree, error)
	PushNode(pageID, nodeID, parentID, label, snapshot string) (*HistoryNode, error)
	GoTo(pageID, nodeID string) error
	ClearPage(pageID string) error
}
