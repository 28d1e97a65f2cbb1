package storage

import (
	"context"
	"fmt"

	"github.com/servicehub/marketplace-client/internal/core/ports"
)

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindRedis  = "redis"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// Options selects and configures a token backend.
type Options struct {
	Kind       string
	FilePath   string
	SQLitePath string
	Redis      RedisConfig
}

// Open builds the configured backend. The returned close function is never
// nil.
func Open(ctx context.Context, opts Options) (ports.TokenBackend, func() error, error) {
	noop := func() error { return nil }

	switch opts.Kind {
	case KindFile, "":
		return NewFileBackend(opts.FilePath), noop, nil
	case KindMemory:
		return NewMemoryBackend(), noop, nil
	case KindRedis:
		client, err := ConnectRedis(ctx, opts.Redis)
		if err != nil {
			return nil, noop, err
		}
		b := NewRedisBackend(client, opts.Redis.Key)
		return b, b.Close, nil
	case KindSQLite:
		b, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown token store %q", opts.Kind)
	}
}
