package match

import (
	"context"
	"sort"

	"github.com/rarepair-api/internal/domain"
)

type matchFinder interface {
	FindByParticipant(ctx context.Context, donorID, recipientID string) ([]domain.Match, error)
}

// QueryService answers read-only match searches.
type QueryService interface {
	// FindByParticipant returns matches involving the given donor and/or
	// recipient, newest first. Empty ids are wildcards; no result is an
	// empty slice, not an error.
	FindByParticipant(ctx context.Context, donorID, recipientID string) ([]domain.Match, error)
}

type queryService struct {
	matches matchFinder
}

func NewQueryService(matches matchFinder) QueryService {
	return &queryService{matches: matches}
}

func (s *queryService) FindByParticipant(ctx context.Context, donorID, recipientID string) ([]domain.Match, error) {
	matches, err := s.matches.FindByParticipant(ctx, donorID, recipientID)
	if err != nil {
		return nil, err
	}
	// The store does not guarantee an order across index queries and scans;
	// the newest-first contract lives here.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if matches == nil {
		matches = []domain.Match{}
	}
	return matches, nil
}
