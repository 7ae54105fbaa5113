package backend

import (
	"context"
	"fmt"

	"idledger/internal/log"
	"idledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		blobs storage.Blobs
		err   error
	)
	switch config.Type {
	case MemoryBackend:
		blobs = storage.NewMemoryBlobs()
	case FileBackend:
		blobs, err = storage.NewFileBlobs(config.DataDirectory)
	case SQLiteBackend:
		blobs, err = storage.NewSQLiteBlobs(config.SQLiteDBPath)
	case RedisBackend:
		blobs, err = storage.NewRedisBlobs(ctx, config.Redis)
	case MongoBackend:
		blobs, err = storage.NewMongoBlobs(ctx, config.MongoURI, config.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	f.logger.Info("Initialized storage backend",
		log.FieldBackend, config.Type.String(),
		"target", config.target())

	return &BackendResult{
		Blobs:   blobs,
		Cleanup: blobs.Close,
	}, nil
}

// target names where the data lives, without credentials.
func (c Config) target() string {
	switch c.Type {
	case FileBackend:
		return c.DataDirectory
	case SQLiteBackend:
		return c.SQLiteDBPath
	case RedisBackend:
		return c.Redis.Addr
	case MongoBackend:
		return c.MongoDatabase
	default:
		return "in-process"
	}
}
