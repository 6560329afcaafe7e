package storage

import (
	"database/sql"
	"fmt"
	"time"

	"canvasdoc/internal/domain"
)

// MaxHistoryNodes is the number of checkpoints kept per page.
const MaxHistoryNodes = 40

// HistoryStore manages per-page undo history in SQL.
type HistoryStore struct {
	db *DB
}

var _ domain.HistoryStore = (*HistoryStore)(nil)

func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// LoadTree returns the full history tree for a page, or nil if it has none.
func (s *HistoryStore) LoadTree(pageID string) (*domain.HistoryTree, error) {
	rows, err := s.db.Conn().Query(s.db.rebind(
		`SELECT id, page_id, parent_id, label, snapshot, created_at
		 FROM history_nodes WHERE page_id = ? ORDER BY created_at ASC`), pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("load history nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.HistoryNode
	var rootID string
	for rows.Next() {
		var n domain.HistoryNode
		var parent sql.NullString
		if err := rows.Scan(&n.ID, &n.PageID, &parent, &n.Label, &n.Snapshot, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history node: %w", err)
		}
		if parent.Valid {
			p := parent.String
			n.ParentID = &p
		} else {
			rootID = n.ID
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, nil
	}

	var currentID string
	err = s.db.Conn().QueryRow(
		s.db.rebind(`SELECT current_node_id FROM history_state WHERE page_id = ?`), pageID,
	).Scan(&currentID)
	if err != nil {
		currentID = nodes[len(nodes)-1].ID
	}

	return &domain.HistoryTree{
		Nodes:     nodes,
		CurrentID: currentID,
		RootID:    rootID,
	}, nil
}

// PushNode records a checkpoint under parentID and makes it current.
func (s *HistoryStore) PushNode(pageID, nodeID, parentID, label, snapshot string) (*domain.HistoryNode, error) {
	now := time.Now().UTC()

	var pID *string
	if parentID != "" {
		pID = &parentID
	}

	_, err := s.db.Conn().Exec(s.db.rebind(
		`INSERT INTO history_nodes (id, page_id, parent_id, label, snapshot, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		nodeID, pageID, pID, label, snapshot, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert history node: %w", err)
	}

	if err := s.GoTo(pageID, nodeID); err != nil {
		return nil, fmt.Errorf("update history state: %w", err)
	}

	s.pruneIfNeeded(pageID, MaxHistoryNodes)

	return &domain.HistoryNode{
		ID:        nodeID,
		PageID:    pageID,
		ParentID:  pID,
		Label:     label,
		Snapshot:  snapshot,
		CreatedAt: now,
	}, nil
}

// GoTo updates the current position pointer.
func (s *HistoryStore) GoTo(pageID, nodeID string) error {
	_, err := s.db.Conn().Exec(
		s.db.upsert("history_state", "page_id", "current_node_id"),
		pageID, nodeID,
	)
	return err
}

// ClearPage removes all history for a page.
func (s *HistoryStore) ClearPage(pageID string) error {
	_, _ = s.db.Conn().Exec(s.db.rebind(`DELETE FROM history_state WHERE page_id = ?`), pageID)
	_, err := s.db.Conn().Exec(s.db.rebind(`DELETE FROM history_nodes WHERE page_id = ?`), pageID)
	return err
}

// pruneIfNeeded removes the oldest nodes when count exceeds maxNodes,
// re-parenting their children so the tree stays connected.
func (s *HistoryStore) pruneIfNeeded(pageID string, maxNodes int) {
	conn := s.db.Conn()

	var count int
	conn.QueryRow(s.db.rebind(`SELECT COUNT(*) FROM history_nodes WHERE page_id = ?`), pageID).Scan(&count)
	if count <= maxNodes {
		return
	}

	toDelete := count - maxNodes

	// Get current node BEFORE opening rows cursor (avoid nested query deadlock)
	var currentID string
	conn.QueryRow(s.db.rebind(`SELECT current_node_id FROM history_state WHERE page_id = ?`), pageID).Scan(&currentID)

	rows, err := conn.Query(s.db.rebind(
		`SELECT id FROM history_nodes WHERE page_id = ?
		 ORDER BY created_at ASC LIMIT ?`), pageID, toDelete,
	)
	if err != nil {
		return
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		if id != currentID {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		var parentID sql.NullString
		conn.QueryRow(s.db.rebind(`SELECT parent_id FROM history_nodes WHERE id = ?`), id).Scan(&parentID)

		if parentID.Valid {
			conn.Exec(s.db.rebind(`UPDATE history_nodes SET parent_id = ? WHERE parent_id = ?`), parentID.String, id)
		} else {
			conn.Exec(s.db.rebind(`UPDATE history_nodes SET parent_id = NULL WHERE parent_id = ?`), id)
		}

		conn.Exec(s.db.rebind(`DELETE FROM history_nodes WHERE id = ?`), id)
	}
}
