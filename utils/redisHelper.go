package utils

import (
	"os"
	"strconv"
	"time"

	"bitbucket.org/distextil/telas_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

// InvalidateCachePatterns acts on the opaque cache-invalidation hints the
// workflow layer returns after a successful mutation. The core never talks
// to redis itself; it only names the patterns that went stale.
func InvalidateCachePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if err := config.RemoveRedisKeysByPattern(pattern); err != nil {
			return err
		}
	}
	return nil
}
