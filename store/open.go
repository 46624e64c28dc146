package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"StrawberryBot/utils"
)

const (
	BackendJSON     = "json"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"

	DataFileName = "strawberry_data.json"
)

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DataDir     string
	DatabaseURL string
	RedisURL    string
	RedisPrefix string
	Autosave    time.Duration
}

// ResolveBackend returns the explicit backend if set, otherwise infers one
// from which URL is configured, falling back to the JSON file.
func (o Options) ResolveBackend() string {
	switch b := strings.ToLower(strings.TrimSpace(o.Backend)); b {
	case "":
	case "sql", "pg", "postgresql":
		return BackendPostgres
	case "sqlite3":
		return BackendSQLite
	default:
		return b
	}
	switch {
	case o.DatabaseURL != "":
		if _, _, d, err := parseDatabaseURL(o.DatabaseURL); err == nil && d == dialectSQLite {
			return BackendSQLite
		}
		return BackendPostgres
	case o.RedisURL != "":
		return BackendRedis
	}
	return BackendJSON
}

// Open builds the configured Store.
func Open(ctx context.Context, o Options) (Store, error) {
	backend := o.ResolveBackend()
	utils.LogComponent("store", "Opening %s balance store", backend)

	switch backend {
	case BackendJSON:
		dir := o.DataDir
		if dir == "" {
			dir = "data"
		}
		return OpenJSON(filepath.Join(dir, DataFileName), o.Autosave)
	case BackendRedis:
		if o.RedisURL == "" {
			return nil, fmt.Errorf("redis backend needs REDIS_URL")
		}
		return OpenRedis(ctx, o.RedisURL, o.RedisPrefix)
	case BackendPostgres, BackendSQLite:
		url := o.DatabaseURL
		if url == "" && backend == BackendSQLite {
			dir := o.DataDir
			if dir == "" {
				dir = "data"
			}
			url = "sqlite://" + filepath.Join(dir, "strawberry.db")
		}
		if url == "" {
			return nil, fmt.Errorf("%s backend needs DATABASE_URL", backend)
		}
		return OpenSQL(ctx, url)
	}
	return nil, fmt.Errorf("unknown store backend %q", o.Backend)
}

// Copy writes every record of src into dst, overwriting existing ids.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	recs, err := src.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	for i, rec := range recs {
		rec := rec
		if _, err := dst.Update(ctx, rec.UserID, func(r *Record, _ bool) error {
			*r = rec
			return nil
		}); err != nil {
			return i, fmt.Errorf("write %s: %w", rec.UserID, err)
		}
	}
	return len(recs), nil
}
