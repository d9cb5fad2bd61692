package words

import (
	"context"

	"github.com/mcdev12/wordparty/internal/models"
)

// WordBackend defines what the supply needs from the word-data source. The
// HTTP RPC client and the direct-Postgres backend both implement it.
type WordBackend interface {
	// GetActiveCategories fetches the categories currently eligible for play.
	GetActiveCategories(ctx context.Context) ([]models.Category, error)

	// GetRandomWord draws one random pair scoped to the category. A nil pair
	// with a nil error means the backend had no row.
	GetRandomWord(ctx context.Context, categoryID string) (*models.WordPair, error)
}

// BackendFactory constructs the backend on first use. It returns
// ErrMissingConfig (wrapped) when required settings are absent.
type BackendFactory func() (WordBackend, error)
