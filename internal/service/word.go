// Package service provides the business logic of the word server,
// delegating persistence to repository interfaces.
package service

import (
	"context"

	"github.com/phihung0131/vocabulary-extension/internal/models"
)

// WordRepository defines the persistence operations needed by WordService.
type WordRepository interface {
	// WordExists reports whether any live collocation exists for word.
	WordExists(ctx context.Context, word string) (bool, error)
	// InsertCollocations stores collocations, skipping duplicates, and
	// returns the number inserted.
	InsertCollocations(ctx context.Context, collocations []models.Collocation) (int, error)
	// GetCollocations fetches every live collocation.
	GetCollocations(ctx context.Context) ([]models.Collocation, error)
	// DeleteAll soft-deletes every live collocation and returns the count.
	DeleteAll(ctx context.Context) (int, error)
}

// WordService implements the word server's business logic.
type WordService struct {
	// repo is the underlying persistence repository.
	repo WordRepository
}

// NewWordService constructs a WordService with the provided repository.
func NewWordService(repo WordRepository) *WordService {
	return &WordService{repo: repo}
}

// Exists reports whether the server already stores collocations for word.
func (s *WordService) Exists(ctx context.Context, word string) (bool, error) {
	return s.repo.WordExists(ctx, word)
}

// AddCollocations stores the submitted collocations, dropping entries with
// an empty word or phrase, and returns how many were inserted.
func (s *WordService) AddCollocations(ctx context.Context, collocations []models.Collocation) (int, error) {
	valid := make([]models.Collocation, 0, len(collocations))
	for _, c := range collocations {
		if c.Word == "" || c.Collocation == "" {
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return 0, nil
	}
	return s.repo.InsertCollocations(ctx, valid)
}

// List returns every live collocation.
func (s *WordService) List(ctx context.Context) ([]models.Collocation, error) {
	return s.repo.GetCollocations(ctx)
}

// DeleteAll removes every collocation and returns the deletion count.
func (s *WordService) DeleteAll(ctx context.Context) (int, error) {
	return s.repo.DeleteAll(ctx)
}
