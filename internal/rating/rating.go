// Package rating keeps a resolver's aggregate rating in step with the
// feedback left on their closed complaints.
package rating

import (
	"context"
)

// Storage is what Recompute needs from the store. It must be called with a
// transactional store so the lock is held until the feedback commits.
type Storage interface {
	// LockResolver takes a row lock on the resolver, serialising concurrent
	// recomputations for the same resolver.
	LockResolver(ctx context.Context, resolverID uint) error
	// ListResolverRatings returns the ratings of the resolver's rated closed
	// complaints, excluding excludeID.
	ListResolverRatings(ctx context.Context, resolverID, excludeID uint) ([]int, error)
	SetResolverRating(ctx context.Context, resolverID uint, rating float64) error
}

// Mean is the arithmetic mean of prior and newRating, kept at full precision.
func Mean(prior []int, newRating int) float64 {
	sum := newRating
	for _, r := range prior {
		sum += r
	}
	return float64(sum) / float64(len(prior)+1)
}

// Recompute sets the resolver's rating to the mean over every rated closed
// complaint, counting complaintID once with newRating whether or not its own
// write is already visible.
func Recompute(ctx context.Context, s Storage, resolverID, complaintID uint, newRating int) (float64, error) {
	if err := s.LockResolver(ctx, resolverID); err != nil {
		return 0, err
	}
	prior, err := s.ListResolverRatings(ctx, resolverID, complaintID)
	if err != nil {
		return 0, err
	}
	mean := Mean(prior, newRating)
	if err := s.SetResolverRating(ctx, resolverID, mean); err != nil {
		return 0, err
	}
	return mean, nil
}
