package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"canvasdoc/internal/domain"
)

// FileStore keeps each project as <dir>/<key>.json.
type FileStore struct {
	dir string

	mu      sync.Mutex
	written map[string]string // key -> last content written by this process
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

var _ domain.ProjectStore = (*FileStore)(nil)

// ChangeHandler is called when a project file is modified by another process.
type ChangeHandler func(key, content string)

func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, written: map[string]string{}, logger: logger}, nil
}

// Path returns the file backing key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read project file: %w", err)
	}
	return string(data), true, nil
}

func (s *FileStore) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.written[key] = value
	s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close project file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("rename project file: %w", err)
	}
	return nil
}

// Watch starts reporting external modifications of project files to onChange.
// Writes made through Save are not reported. Events for the same key within
// 500ms are coalesced.
func (s *FileStore) Watch(ctx context.Context, onChange ChangeHandler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go s.watchLoop(ctx, watcher, onChange)
	return nil
}

func (s *FileStore) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange ChangeHandler) {
	var timersMu sync.Mutex
	timers := map[string]*time.Timer{}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			key := strings.TrimSuffix(name, ".json")

			timersMu.Lock()
			if t, ok := timers[key]; ok {
				t.Stop()
			}
			timers[key] = time.AfterFunc(500*time.Millisecond, func() {
				timersMu.Lock()
				delete(timers, key)
				timersMu.Unlock()
				s.fire(ctx, key, onChange)
			})
			timersMu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("project watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) fire(ctx context.Context, key string, onChange ChangeHandler) {
	content, found, err := s.Load(ctx, key)
	if err != nil || !found {
		if err != nil {
			s.logger.Warn("read changed project", zap.String("key", key), zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	own := s.written[key] == content
	s.mu.Unlock()
	if own {
		return
	}
	s.logger.Info("project changed on disk", zap.String("key", key))
	onChange(key, content)
}

// Close stops the watcher if one is running.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}
