package words

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/wordparty/internal/models"
)

// PostgresBackend draws categories and word pairs straight from the database,
// invoking the same SQL functions the REST RPC layer exposes. Used when a
// deployment points the server directly at Postgres instead of the hosted
// word API.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects a pgx pool to the given connection string.
func NewPostgresBackend(ctx context.Context, connString string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresBackend{pool: pool}, nil
}

var _ WordBackend = (*PostgresBackend)(nil)

// GetActiveCategories lists the categories currently open for play.
func (b *PostgresBackend) GetActiveCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, name, emoji FROM get_active_categories()`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Emoji); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	return categories, nil
}

// GetRandomWord draws one random pair for the category. A nil pair with nil
// error means the function returned no row.
func (b *PostgresBackend) GetRandomWord(ctx context.Context, categoryID string) (*models.WordPair, error) {
	row := b.pool.QueryRow(ctx, `SELECT word, ref, hint FROM get_random_word($1)`, categoryID)

	var pair models.WordPair
	err := row.Scan(&pair.Word, &pair.Ref, &pair.Hint)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to draw random word: %w", err)
	}

	return &pair, nil
}

// Close releases the underlying pool.
func (b *PostgresBackend) Close() {
	b.pool.Close()
}
