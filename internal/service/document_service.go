package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"canvasdoc/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Document Service: ordered pages, current page and persistence
// ─────────────────────────────────────────────────────────────

type DocumentService struct {
	scene   Scene
	border  *BorderService
	store   domain.ProjectStore
	emitter EventEmitter
	logger  *zap.Logger
	key     string

	pages   []domain.Page
	current int
}

// NewDocumentService creates an empty document. Call LoadProject (or
// SaveCurrentPage) to seed the first page.
func NewDocumentService(scene Scene, border *BorderService, store domain.ProjectStore, emitter EventEmitter, logger *zap.Logger, key string) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if key == "" {
		key = domain.DefaultProjectKey
	}
	return &DocumentService{
		scene:   scene,
		border:  border,
		store:   store,
		emitter: emitter,
		logger:  logger,
		key:     key,
	}
}

// ── Pages ──────────────────────────────────────────────────

// Pages returns a copy of the page list.
func (s *DocumentService) Pages() []domain.Page {
	out := make([]domain.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

func (s *DocumentService) PageCount() int    { return len(s.pages) }
func (s *DocumentService) CurrentIndex() int { return s.current }

// CurrentPage returns the stored state of the current page.
func (s *DocumentService) CurrentPage() (domain.Page, bool) {
	if s.current < 0 || s.current >= len(s.pages) {
		return domain.Page{}, false
	}
	return s.pages[s.current], true
}

// SaveCurrentPage captures the live scene and border into the current page,
// appending a page when none exists yet.
func (s *DocumentService) SaveCurrentPage() {
	snap, err := s.scene.Snapshot()
	if err != nil {
		s.logger.Error("snapshot current page", zap.Error(err))
		return
	}
	if s.current < 0 || s.current >= len(s.pages) {
		s.pages = append(s.pages, domain.Page{ID: uuid.New().String()})
		s.current = len(s.pages) - 1
	}
	s.pages[s.current].Scene = snap
	s.pages[s.current].Border = s.border.Config()
}

// AddNewPage saves the current page, starts an empty one after the last page
// and makes it current. Returns the new page index.
func (s *DocumentService) AddNewPage(ctx context.Context) int {
	s.SaveCurrentPage()

	s.scene.Clear()
	s.border.Reset()
	snap, err := s.scene.Snapshot()
	if err != nil {
		s.logger.Error("snapshot new page", zap.Error(err))
	}
	s.pages = append(s.pages, domain.Page{
		ID:     uuid.New().String(),
		Scene:  snap,
		Border: s.border.Config(),
	})
	s.current = len(s.pages) - 1

	s.logger.Debug("page added", zap.Int("index", s.current), zap.Int("count", len(s.pages)))
	s.emitPageChanged(ctx)
	notify(ctx, s.emitter, LevelSuccess, "New page added")
	return s.current
}

// NavigatePage moves by direction pages. Targets outside the document are
// ignored. Reports whether the current page changed.
func (s *DocumentService) NavigatePage(ctx context.Context, direction int) bool {
	target := s.current + direction
	if target < 0 || target >= len(s.pages) || direction == 0 {
		return false
	}

	s.SaveCurrentPage()
	if err := s.showPage(target); err != nil {
		s.logger.Warn("load page", zap.Int("index", target), zap.Error(err))
		notify(ctx, s.emitter, LevelError, fmt.Sprintf("Could not open page %d", target+1))
		return false
	}
	s.current = target

	s.emitPageChanged(ctx)
	notify(ctx, s.emitter, LevelSuccess, fmt.Sprintf("Navigated to page %d", target+1))
	return true
}

// showPage loads page i into the live scene and restores its border.
func (s *DocumentService) showPage(i int) error {
	if err := s.scene.Load(s.pages[i].Scene); err != nil {
		return err
	}
	s.border.SetConfig(s.pages[i].Border)
	s.border.Render()
	return nil
}

// RestorePage loads a previously captured page state into the current page.
func (s *DocumentService) RestorePage(p domain.Page) error {
	if err := s.scene.Load(p.Scene); err != nil {
		return err
	}
	s.border.SetConfig(p.Border)
	s.border.Render()
	s.SaveCurrentPage()
	return nil
}

// ── Persistence ────────────────────────────────────────────

// Project returns the document in its persisted form. The live scene is
// captured first.
func (s *DocumentService) Project() domain.Project {
	s.SaveCurrentPage()
	return domain.Project{Pages: s.Pages(), CurrentPageIndex: s.current}
}

// SaveProject writes every page and the current index to the store.
func (s *DocumentService) SaveProject(ctx context.Context) error {
	data, err := json.Marshal(s.Project())
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := s.store.Save(ctx, s.key, string(data)); err != nil {
		notify(ctx, s.emitter, LevelError, "Error saving project")
		return fmt.Errorf("save project: %w", err)
	}
	s.logger.Info("project saved", zap.String("key", s.key), zap.Int("pages", len(s.pages)))
	notify(ctx, s.emitter, LevelSuccess, "Project saved successfully")
	return nil
}

// LoadProject restores the document from the store. A missing, empty or
// unreadable project resets the document to one page holding the live scene;
// unreadable data is reported as an error notification, not returned.
func (s *DocumentService) LoadProject(ctx context.Context) error {
	data, found, err := s.store.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if !found || !s.ApplyProject(ctx, data) {
		s.resetToLiveScene(ctx)
		return nil
	}
	notify(ctx, s.emitter, LevelSuccess, "Project loaded")
	return nil
}

var errNoPages = errors.New("project has no pages")

// decodeProject parses project data and checks that every page scene can be
// loaded. Missing page IDs are filled in and an out-of-range current index
// falls back to the first page.
func decodeProject(data string) (domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, fmt.Errorf("parse project: %w", err)
	}
	if len(p.Pages) == 0 {
		return p, errNoPages
	}
	for i := range p.Pages {
		page := &p.Pages[i]
		if page.ID == "" {
			page.ID = uuid.New().String()
		}
		if len(page.Scene) == 0 {
			page.Scene = json.RawMessage(`{"objects":[]}`)
		}
		var snap domain.SceneSnapshot
		if err := json.Unmarshal(page.Scene, &snap); err != nil {
			return p, fmt.Errorf("page %d: %w", i+1, err)
		}
	}
	if p.CurrentPageIndex < 0 || p.CurrentPageIndex >= len(p.Pages) {
		p.CurrentPageIndex = 0
	}
	return p, nil
}

// ApplyProject replaces the document with serialized project data. Unusable
// data leaves the document as it was and returns false.
func (s *DocumentService) ApplyProject(ctx context.Context, data string) bool {
	p, err := decodeProject(data)
	if err != nil {
		s.logger.Warn("ignoring project data", zap.Error(err))
		if !errors.Is(err, errNoPages) {
			notify(ctx, s.emitter, LevelError, "Error loading project")
		}
		return false
	}

	if len(s.pages) > 0 {
		s.SaveCurrentPage()
	}
	prevPages, prevCurrent := s.pages, s.current
	s.pages = p.Pages
	if err := s.showPage(p.CurrentPageIndex); err != nil {
		s.pages, s.current = prevPages, prevCurrent
		if len(s.pages) > 0 {
			_ = s.showPage(s.current)
		}
		s.logger.Warn("load stored page", zap.Int("index", p.CurrentPageIndex), zap.Error(err))
		notify(ctx, s.emitter, LevelError, "Error loading project")
		return false
	}
	s.current = p.CurrentPageIndex
	s.emitPageChanged(ctx)
	return true
}

// Reset discards every page and starts over with the live scene as page 1.
func (s *DocumentService) Reset(ctx context.Context) {
	s.resetToLiveScene(ctx)
}

func (s *DocumentService) resetToLiveScene(ctx context.Context) {
	s.pages = nil
	s.current = 0
	s.SaveCurrentPage()
	s.emitPageChanged(ctx)
}

func (s *DocumentService) emitPageChanged(ctx context.Context) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, EventPageChanged, PageChange{Index: s.current, Count: len(s.pages)})
}
