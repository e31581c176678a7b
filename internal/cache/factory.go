package cache

import (
	"fmt"

	"github.com/storynest/storysync/internal/config"
)

// Open builds the Store selected by configuration.
//
// Drivers: "sqlite" (default, on-device), "memory" (ephemeral), "redis"
// (companion-service deployments).
func Open(cfg config.Cache) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite cache requires a path")
		}
		return OpenSQLite(cfg.Path)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache requires an address")
		}
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
