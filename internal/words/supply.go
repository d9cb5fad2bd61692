package words

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/wordparty/internal/models"
)

// Supply insulates gameplay logic from the word-data backend. The backend is
// constructed lazily on first use and shared for the life of the process;
// concurrent first callers wait on the same construction and only one client
// is ever built.
//
// The two operations deliberately fail differently: a category listing that
// cannot be served degrades to an empty list (the lobby just renders empty),
// while a failed word-pair draw is an error the caller must report, because a
// round was already committed when the draw happened.
type Supply struct {
	factory BackendFactory

	initOnce sync.Once
	backend  WordBackend
	initErr  error
}

// NewSupply creates a word supply backed by whatever the factory builds.
func NewSupply(factory BackendFactory) *Supply {
	return &Supply{factory: factory}
}

func (s *Supply) init() (WordBackend, error) {
	s.initOnce.Do(func() {
		s.backend, s.initErr = s.factory()
		if s.initErr != nil {
			log.Error().Err(s.initErr).Msg("word backend initialization failed")
			return
		}
		log.Info().Msg("word backend initialized")
	})
	return s.backend, s.initErr
}

// GetActiveCategories returns the categories eligible for play. Backend and
// configuration failures are logged and swallowed; the caller always gets a
// usable slice, possibly empty.
func (s *Supply) GetActiveCategories(ctx context.Context) []models.Category {
	backend, err := s.init()
	if err != nil {
		return []models.Category{}
	}

	categories, err := backend.GetActiveCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch active categories")
		return []models.Category{}
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories
}

// GetRandomWordPair draws one word pair for the category. Unlike category
// listing, every failure here is surfaced: a round cannot start without a
// pair. Zero rows and rows missing word or ref both normalize to
// ErrNoWordPair; the caller must not need to distinguish them from a backend
// outage.
func (s *Supply) GetRandomWordPair(ctx context.Context, categoryID string) (models.WordPair, error) {
	backend, err := s.init()
	if err != nil {
		return models.WordPair{}, err
	}

	pair, err := backend.GetRandomWord(ctx, categoryID)
	if err != nil {
		log.Error().Err(err).Str("category_id", categoryID).Msg("word pair draw failed")
		return models.WordPair{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if pair == nil || !pair.Complete() {
		log.Warn().Str("category_id", categoryID).Msg("backend returned no usable word pair")
		return models.WordPair{}, fmt.Errorf("%w for category %q", ErrNoWordPair, categoryID)
	}

	return *pair, nil
}
