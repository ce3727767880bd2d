package docstore

import (
	"context"
	"os"
	"strings"
)

const (
	ProviderGCS    = "gcs"
	ProviderMemory = "memory"
)

func GetProvider() string {
	provider := strings.TrimSpace(strings.ToLower(os.Getenv("DOCSTORE_PROVIDER")))
	if provider == "" {
		return ProviderGCS
	}
	return provider
}

// NewFromEnv picks the store implementation from DOCSTORE_PROVIDER.
func NewFromEnv(ctx context.Context) (Store, error) {
	if GetProvider() == ProviderMemory {
		return NewMemoryStore(), nil
	}
	return NewGCSStore(ctx)
}
