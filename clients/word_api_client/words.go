package word_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcdev12/wordparty/internal/models"
)

// GetActiveCategories fetches the categories currently eligible for play.
func (c *WordApiClient) GetActiveCategories(ctx context.Context) ([]models.Category, error) {
	body, err := c.Post(ctx, ActiveCategoriesEndpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active categories: %w", err)
	}

	var categories []models.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}

	return categories, nil
}

type randomWordParams struct {
	CategoryID string `json:"category_id"`
}

// GetRandomWord draws one random word pair scoped to the category. The RPC
// may answer with a single record or a one-element array depending on how the
// backend function is declared; both shapes are accepted. A nil pair with nil
// error means no row came back.
func (c *WordApiClient) GetRandomWord(ctx context.Context, categoryID string) (*models.WordPair, error) {
	params, err := json.Marshal(randomWordParams{CategoryID: categoryID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode random word params: %w", err)
	}

	body, err := c.Post(ctx, RandomWordEndpoint, bytes.NewReader(params))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch random word: %w", err)
	}

	return parseWordPairResponse(body)
}

func parseWordPairResponse(body []byte) (*models.WordPair, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	if body[0] == '[' {
		var rows []models.WordPair
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("failed to parse random word response: %w", err)
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return &rows[0], nil
	}

	var pair models.WordPair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, fmt.Errorf("failed to parse random word response: %w", err)
	}
	return &pair, nil
}
