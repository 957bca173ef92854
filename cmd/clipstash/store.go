package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/thek4n/clipstash/internal/domain/config"
	"github.com/thek4n/clipstash/internal/domain/repository"
	infrarepository "github.com/thek4n/clipstash/internal/infrastructure/repository"
)

const connectTimeout = 10 * time.Second

type storeOptions struct {
	Storage     string `long:"storage" env:"CLIPSTASH_STORAGE" default:"sqlite" choice:"memory" choice:"sqlite" choice:"postgres" choice:"redis" description:"Clips storage"`
	SQLitePath  string `long:"sqlite-path" env:"CLIPSTASH_SQLITE_PATH" default:"clipstash.db" description:"SQLite database file"`
	PostgresDSN string `long:"postgres-dsn" env:"POSTGRES_DSN" default:"postgres://localhost:5432/clipstash" description:"Postgres connection string"`
	DBPort      int    `long:"dbport" env:"REDIS_PORT" default:"6379" description:"Redis port"`
	DBHost      string `long:"dbhost" env:"REDIS_HOST" default:"localhost" description:"Redis host"`
	DBIndex     int    `long:"dbindex" env:"REDIS_DB" default:"0" description:"Redis database index"`
}

// store is clip and apikey repositories sharing one connection.
type store struct {
	clips   repository.ClipRepository
	apikeys repository.APIKeyRepository
	ping    func(ctx context.Context) error
	close   func() error
}

func (s *store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *store) Close() error {
	return s.close()
}

var errMemoryStorage = errors.New("memory storage is not shared with server, choose persistent storage")

// requirePersistentStore rejects storage living only inside current process.
func requirePersistentStore(opts storeOptions) error {
	if opts.Storage == "memory" {
		return errMemoryStorage
	}
	return nil
}

func openStore(opts storeOptions, storageConfig config.StorageConfig) (*store, error) {
	switch opts.Storage {
	case "memory":
		repo := infrarepository.NewMemoryRepository()
		return &store{
			clips:   repo,
			apikeys: repo,
			ping:    func(context.Context) error { return nil },
			close:   func() error { return nil },
		}, nil

	case "sqlite":
		repo, err := infrarepository.NewSQLiteRepository(opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("fail to open sqlite '%s': %w", opts.SQLitePath, err)
		}
		return &store{clips: repo, apikeys: repo, ping: repo.Ping, close: repo.Close}, nil

	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		repo, err := infrarepository.NewPostgresRepository(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("fail to connect postgres: %w", err)
		}
		return &store{
			clips:   repo,
			apikeys: repo,
			ping:    repo.Ping,
			close: func() error {
				repo.Close()
				return nil
			},
		}, nil

	case "redis":
		client := newRedisClient(opts)
		clips := infrarepository.NewRedisClipRepository(client, storageConfig)
		return &store{
			clips:   clips,
			apikeys: infrarepository.NewRedisAPIKeyRepository(client),
			ping:    clips.Ping,
			close:   client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage '%s'", opts.Storage)
	}
}

func newRedisClient(opts storeOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.DBHost, opts.DBPort),
		PoolSize:     100,
		DB:           opts.DBIndex,
		MaxRetries:   5,
		DialTimeout:  connectTimeout,
		WriteTimeout: 5 * time.Second,
	})
}
