package redis

import (
	"context"
	"strconv"

	"github.com/coderopp/smartneed/internal/db"
)

// ZIncrBy increments a sorted-set member's score, creating it at delta if absent.
func (s *Store) ZIncrBy(ctx context.Context, key, member string, delta float64) error {
	cmd := s.b().Zincrby().Key(key).Increment(delta).Member(member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZIncrBy, Err: err}
	}
	return nil
}

// ZTop returns up to count members ordered by score descending.
func (s *Store) ZTop(ctx context.Context, key string, count int) ([]db.ScoredMember, error) {
	if count <= 0 {
		return nil, nil
	}
	cmd := s.b().Zrange().Key(key).Min("0").Max(strconv.Itoa(count - 1)).Rev().Withscores().Build()
	scores, err := s.do(ctx, cmd).AsZScores()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}

	members := make([]db.ScoredMember, len(scores))
	for i, z := range scores {
		members[i] = db.ScoredMember{Member: z.Member, Score: z.Score}
	}
	return members, nil
}

// ZCard returns the sorted-set cardinality.
func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Zcard().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpZCard, Err: err}
	}
	return n, nil
}
