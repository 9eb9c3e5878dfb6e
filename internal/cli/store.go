package cli

import (
	"context"
	"fmt"

	"github.com/TAKIS21345/techsteps-sub005/internal/core/config"
	redisstore "github.com/TAKIS21345/techsteps-sub005/internal/infra/redis"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage"
	"github.com/TAKIS21345/techsteps-sub005/internal/infra/storage/postgres"
)

// openStore connects to the persistent backend named in the config. Inspection
// commands need durable storage, so the in-process fallback is rejected.
func openStore(ctx context.Context, cfg *config.AppConfig) (storage.Store, error) {
	switch {
	case cfg.Database.URL != "":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewStore(db), nil
	case cfg.Redis.URL != "":
		store, err := redisstore.NewStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("no persistent storage configured (set database.url or redis.url)")
	}
}
