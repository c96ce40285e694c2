package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator"
	"github.com/jo-hoe/inventory/internal/backend/blobstore"
	"github.com/jo-hoe/inventory/internal/backend/cache"
	"github.com/jo-hoe/inventory/internal/backend/database"
	"github.com/jo-hoe/inventory/internal/common"
	"github.com/jo-hoe/inventory/internal/metrics"
)

const metricsNamespace = "inventory"

// CoreService is the authoritative owner of resource records and their image blobs.
type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	blobStore       blobstore.BlobStore
	listCache       cache.ListCache
	// listCacheStale is set when an invalidation failed; List bypasses the cache until one succeeds.
	listCacheStale  atomic.Bool
	metrics         *metrics.Recorder
	validator       *validator.Validate
	now             func() time.Time
}

func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}

	blobStore, err := blobstore.NewBlobStore(ctx, config.Storage.Type, config.Storage.Root, blobstore.S3Options{
		Endpoint:        config.Storage.S3.Endpoint,
		Region:          config.Storage.S3.Region,
		Bucket:          config.Storage.S3.Bucket,
		AccessKeyID:     config.Storage.S3.AccessKeyID,
		SecretAccessKey: config.Storage.S3.SecretAccessKey,
		UsePathStyle:    config.Storage.S3.UsePathStyle,
	})
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	listCache, err := cache.NewListCache(
		config.Cache.Type,
		config.Cache.Namespace,
		config.Cache.Address,
		config.Cache.Password,
		config.Cache.DB,
		config.Cache.TTL,
	)
	if err != nil {
		_ = databaseService.Close()
		_ = blobStore.Close()
		return nil, fmt.Errorf("failed to initialize list cache: %w", err)
	}

	return newCoreService(config, databaseService, blobStore, listCache), nil
}

func newCoreService(config *ServiceConfig, databaseService database.DatabaseService, blobStore blobstore.BlobStore, listCache cache.ListCache) *CoreService {
	return &CoreService{
		config:          config,
		databaseService: databaseService,
		blobStore:       blobStore,
		listCache:       listCache,
		metrics:         metrics.NewRecorder(metricsNamespace),
		validator:       common.NewValidator(),
		now:             time.Now,
	}
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

func (service *CoreService) Metrics() *metrics.Recorder {
	return service.metrics
}

// Ready reports whether the record store is reachable.
func (service *CoreService) Ready() bool {
	return service.databaseService.DoesDatabaseExist()
}

func (service *CoreService) Close() error {
	return errors.Join(
		service.listCache.Close(),
		service.blobStore.Close(),
		service.databaseService.Close(),
	)
}
