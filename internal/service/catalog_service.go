package service

import (
	"context"
	"fmt"
	"sync"

	"formassist/internal/catalog"
	"formassist/internal/model"
	"formassist/internal/repository"

	"go.uber.org/zap"
)

// CatalogService serves module definitions. Modules stored in Mongo take
// precedence; the embedded catalog is the fallback.
type CatalogService struct {
	repo     repository.ModuleRepo
	embedded *catalog.Catalog
	log      *zap.Logger

	mu      sync.RWMutex
	current *catalog.Catalog
}

// NewCatalogService creates a catalog service; repo may be nil
func NewCatalogService(repo repository.ModuleRepo, embedded *catalog.Catalog, log *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		embedded: embedded,
		log:      log,
		current:  embedded,
	}
}

// Refresh reloads modules from Mongo and validates the result. Problems are
// logged, never fatal: broken predicates only hide their questions.
func (s *CatalogService) Refresh(ctx context.Context) error {
	next := s.embedded
	if s.repo != nil {
		modules, err := s.repo.List(ctx)
		if err != nil {
			return fmt.Errorf("list modules: %w", err)
		}
		if len(modules) > 0 {
			c, err := catalog.New(modules...)
			if err != nil {
				return err
			}
			next = c
		}
	}

	for _, p := range catalog.Validate(next) {
		s.log.Warn("catalog problem",
			zap.String("module", p.ModuleID),
			zap.String("question", p.QuestionID),
			zap.String("problem", p.Message))
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.log.Info("catalog loaded", zap.Int("modules", next.Len()))
	return nil
}

func (s *CatalogService) catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Get returns a module by id
func (s *CatalogService) Get(id string) (*model.Module, error) {
	m, ok := s.catalog().Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, id)
	}
	return m, nil
}

// Default returns the first module, used when a session names none
func (s *CatalogService) Default() (*model.Module, error) {
	modules := s.catalog().List()
	if len(modules) == 0 {
		return nil, ErrUnknownModule
	}
	return modules[0], nil
}

// List returns module summaries in the given locale
func (s *CatalogService) List(locale model.Locale) []model.ModuleSummary {
	return s.catalog().Summaries(locale)
}

// Seed copies the embedded modules into Mongo
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("no module repository")
	}
	n := 0
	for _, m := range s.embedded.List() {
		if err := s.repo.Upsert(ctx, m); err != nil {
			return n, fmt.Errorf("seed %s: %w", m.ID, err)
		}
		n++
	}
	return n, nil
}
