package poll

import (
	"context"

	"github.com/pollhive/api.pollhive.dev/redis"
)

// Tally recounts the poll's ballots into per-option counts. Options nobody
// picked are absent from the map. The count is recomputed from storage on
// every call; nothing is cached write-side.
func (r *Repository) Tally(ctx context.Context, id string) (map[string]int, error) {
	results := map[string]int{}

	iter := r.rdb.Scan(ctx, 0, ballotKeyPattern(id), scanCount).Iterator()
	for iter.Next(ctx) {
		value, err := r.rdb.Get(ctx, iter.Val()).Result()
		if err == redis.ErrNil {
			continue
		}
		if err != nil {
			return nil, err
		}
		if value != "" {
			results[value]++
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
