package config

import (
	"fmt"

	"github.com/redis/rueidis"
)

// NewRedisClient connects the session store backend with client-side
// caching off.
func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(
		rueidis.ClientOption{
			InitAddress:  []string{addr},
			DisableCache: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}

	return client, nil
}
