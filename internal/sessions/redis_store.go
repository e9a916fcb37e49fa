package sessions

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/rueidis"
	"github.com/sony/gobreaker/v2"
)

const redisKeyPrefix = "session:"

var ErrStoreUnavailable = errors.New("session store unavailable")

// RedisStore keeps sessions in Redis behind a circuit breaker. While the
// breaker is open every call fails with ErrStoreUnavailable.
type RedisStore struct {
	client  rueidis.Client
	breaker *gobreaker.CircuitBreaker[string]
}

func NewRedisStore(client rueidis.Client, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "session-store",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrSessionNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisStore{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (s *RedisStore) Save(ctx context.Context, id, username string, ttl time.Duration) error {
	_, err := s.execute(func() (string, error) {
		cmd := s.client.B().Set().Key(redisKeyPrefix + id).Value(username).Ex(ttl).Build()
		return "", s.client.Do(ctx, cmd).Error()
	})
	return err
}

func (s *RedisStore) Load(ctx context.Context, id string) (string, error) {
	return s.execute(func() (string, error) {
		username, err := s.client.Do(ctx, s.client.B().Get().Key(redisKeyPrefix+id).Build()).ToString()
		if rueidis.IsRedisNil(err) {
			return "", ErrSessionNotFound
		}
		return username, err
	})
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.execute(func() (string, error) {
		return "", s.client.Do(ctx, s.client.B().Del().Key(redisKeyPrefix+id).Build()).Error()
	})
	return err
}

func (s *RedisStore) execute(fn func() (string, error)) (string, error) {
	result, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrStoreUnavailable
	}
	return result, err
}
