package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
)

const redisKeyPrefix = "schedule:"

// Redis persists schedules in a Redis instance, one serialized document
// per loan id.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis store for the given address.
func NewRedis(addr string) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, loanID string, s *schedule.Schedule) error {
	data, err := Encode(loanID, s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+loanID, data, 0).Err()
}

// Load implements Store.
func (r *Redis) Load(ctx context.Context, loanID string) (*schedule.Schedule, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+loanID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	_, s, err := Decode(data)
	return s, err
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, loanID string) error {
	return r.client.Del(ctx, redisKeyPrefix+loanID).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
