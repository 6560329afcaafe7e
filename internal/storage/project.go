package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"canvasdoc/internal/domain"
)

// ProjectStore keeps serialized projects in the projects table.
type ProjectStore struct {
	db *DB
}

var _ domain.ProjectStore = (*ProjectStore)(nil)

func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) Load(ctx context.Context, key string) (string, bool, error) {
	var data string
	err := s.db.Conn().QueryRowContext(ctx,
		s.db.rebind(`SELECT data FROM projects WHERE project_key = ?`), key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get project: %w", err)
	}
	return data, true, nil
}

func (s *ProjectStore) Save(ctx context.Context, key, value string) error {
	_, err := s.db.Conn().ExecContext(ctx,
		s.db.upsert("projects", "project_key", "data", "updated_at"),
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Delete removes a stored project.
func (s *ProjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Conn().ExecContext(ctx, s.db.rebind(`DELETE FROM projects WHERE project_key = ?`), key)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *ProjectStore) Close() error {
	return s.db.Close()
}
