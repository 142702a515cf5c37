package database

import (
	"context"
	"fmt"

	"github.com/legxcy/outreach-api/internal/config"
	"github.com/legxcy/outreach-api/internal/repository"
)

// OpenStore connects the key-value backend selected by cfg.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.KVBackend {
	case config.BackendMemory, "":
		return repository.NewMemoryStore(), nil
	case config.BackendRedis:
		store, err := repository.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		pool, err := Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := repository.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate kv schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported kv backend %q", cfg.KVBackend)
	}
}
