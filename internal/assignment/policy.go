// Package assignment picks a resolver for high-priority complaints at filing
// time.
//
// The policy is greedy least-loaded: among the organization's active
// resolvers of the complaint's category, the one with the fewest open
// (pending or in_progress) complaints wins. Candidates are ordered by
// ascending resolver id and ties go to the first candidate, so the choice is
// reproducible. Already assigned complaints are never rebalanced and resolver
// ratings are ignored.
package assignment

import (
	"context"

	"actionflow/backend/internal/models"
)

// Storage is the part of the store the policy reads.
type Storage interface {
	// ListActiveResolvers returns active resolvers ordered by ascending id.
	ListActiveResolvers(ctx context.Context, orgID uint, category string) ([]models.Resolver, error)
	// CountOpenWorkload maps resolver id to its number of open complaints.
	// Resolvers without open complaints may be absent.
	CountOpenWorkload(ctx context.Context, resolverIDs []uint) (map[uint]int64, error)
}

// ShouldAutoAssign reports whether complaints of priority p are assigned at
// filing time.
func ShouldAutoAssign(p models.Priority) bool {
	return p == models.PriorityHigh
}

// SelectResolver returns the resolver a new complaint should go to, or nil
// when the category has no active resolver.
func SelectResolver(ctx context.Context, s Storage, orgID uint, category string) (*models.Resolver, error) {
	candidates, err := s.ListActiveResolvers(ctx, orgID, category)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(candidates))
	for i, r := range candidates {
		ids[i] = r.ID
	}
	workload, err := s.CountOpenWorkload(ctx, ids)
	if err != nil {
		return nil, err
	}
	return LeastLoaded(candidates, workload), nil
}

// LeastLoaded returns the first candidate with the minimum workload.
func LeastLoaded(candidates []models.Resolver, workload map[uint]int64) *models.Resolver {
	var best *models.Resolver
	var min int64
	for i := range candidates {
		n := workload[candidates[i].ID]
		if best == nil || n < min {
			best, min = &candidates[i], n
		}
	}
	return best
}
