package words

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/wordparty/internal/models"
)

type MockWordBackend struct {
	mock.Mock
}

func (m *MockWordBackend) GetActiveCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockWordBackend) GetRandomWord(ctx context.Context, categoryID string) (*models.WordPair, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WordPair), args.Error(1)
}

func supplyWith(backend WordBackend) *Supply {
	return NewSupply(func() (WordBackend, error) {
		return backend, nil
	})
}

func TestGetActiveCategoriesHappyPath(t *testing.T) {
	backend := &MockWordBackend{}
	backend.On("GetActiveCategories", mock.Anything).Return([]models.Category{
		{ID: "animals", Name: "Animals", Emoji: "🐘"},
		{ID: "food", Name: "Food", Emoji: "🍕"},
	}, nil)

	categories := supplyWith(backend).GetActiveCategories(context.Background())

	require.Len(t, categories, 2)
	assert.Equal(t, "animals", categories[0].ID)
}

func TestGetActiveCategoriesSwallowsBackendFailure(t *testing.T) {
	backend := &MockWordBackend{}
	backend.On("GetActiveCategories", mock.Anything).Return(nil, errors.New("connection refused"))

	categories := supplyWith(backend).GetActiveCategories(context.Background())

	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestGetActiveCategoriesSwallowsConfigFailure(t *testing.T) {
	s := NewSupply(func() (WordBackend, error) {
		return nil, ErrMissingConfig
	})

	categories := s.GetActiveCategories(context.Background())

	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestGetRandomWordPairHappyPath(t *testing.T) {
	backend := &MockWordBackend{}
	backend.On("GetRandomWord", mock.Anything, "animals").Return(
		&models.WordPair{Word: "elephant", Ref: "mammal"}, nil)

	pair, err := supplyWith(backend).GetRandomWordPair(context.Background(), "animals")

	require.NoError(t, err)
	assert.Equal(t, "elephant", pair.Word)
	assert.Equal(t, "mammal", pair.Ref)
	assert.Nil(t, pair.Hint)
}

func TestGetRandomWordPairBackendFailureIsFatal(t *testing.T) {
	backend := &MockWordBackend{}
	backend.On("GetRandomWord", mock.Anything, "cat-1").Return(nil, errors.New("timeout"))

	_, err := supplyWith(backend).GetRandomWordPair(context.Background(), "cat-1")

	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestGetRandomWordPairNoRows(t *testing.T) {
	backend := &MockWordBackend{}
	backend.On("GetRandomWord", mock.Anything, "cat-1").Return(nil, nil)

	_, err := supplyWith(backend).GetRandomWordPair(context.Background(), "cat-1")

	assert.ErrorIs(t, err, ErrNoWordPair)
}

func TestGetRandomWordPairIncompleteRowIsNoData(t *testing.T) {
	tests := []struct {
		name string
		pair *models.WordPair
	}{
		{"empty word", &models.WordPair{Word: "", Ref: "x"}},
		{"empty ref", &models.WordPair{Word: "x", Ref: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockWordBackend{}
			backend.On("GetRandomWord", mock.Anything, "cat-1").Return(tt.pair, nil)

			_, err := supplyWith(backend).GetRandomWordPair(context.Background(), "cat-1")

			assert.ErrorIs(t, err, ErrNoWordPair)
		})
	}
}

func TestGetRandomWordPairMissingConfig(t *testing.T) {
	s := NewSupply(func() (WordBackend, error) {
		return nil, ErrMissingConfig
	})

	_, err := s.GetRandomWordPair(context.Background(), "animals")
	assert.ErrorIs(t, err, ErrMissingConfig)

	// Not retried into a fallback: the same error on every subsequent call.
	_, err = s.GetRandomWordPair(context.Background(), "animals")
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestLazyInitBuildsExactlyOneBackend(t *testing.T) {
	backend := &MockWordBackend{}
	backend.On("GetActiveCategories", mock.Anything).Return([]models.Category{}, nil)

	var constructions atomic.Int32
	s := NewSupply(func() (WordBackend, error) {
		constructions.Add(1)
		return backend, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.GetActiveCategories(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), constructions.Load())
}

func TestBackendNotConstructedBeforeFirstUse(t *testing.T) {
	var constructions atomic.Int32
	NewSupply(func() (WordBackend, error) {
		constructions.Add(1)
		return &MockWordBackend{}, nil
	})

	assert.Zero(t, constructions.Load())
}
