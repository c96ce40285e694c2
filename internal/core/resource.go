package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jo-hoe/inventory/internal/backend/blobstore"
	"github.com/jo-hoe/inventory/internal/backend/database"
)

const imageDirectory = "images"

// List returns every resource in primary key order. No filtering or pagination is applied.
func (service *CoreService) List(ctx context.Context) (resources []*database.Resource, err error) {
	start := time.Now()
	defer func() { service.metrics.Observe("list", resultOf(err), start) }()

	generation, useCache := service.listGeneration(ctx)
	if useCache {
		cached, ok, cacheErr := service.listCache.Load(ctx, generation)
		if cacheErr != nil {
			slog.Warn("List: failed to load cached list, falling back to database", "error", cacheErr)
			useCache = false
		} else if ok {
			return cached, nil
		}
	}

	resources, err = service.databaseService.GetAllResources(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list resources", Err: err}
	}

	if useCache {
		if storeErr := service.listCache.Store(ctx, generation, resources); storeErr != nil {
			slog.Warn("List: failed to cache list", "error", storeErr)
		}
	}
	return resources, nil
}

// listGeneration returns the cache generation to read and write. The cache is bypassed while
// an earlier invalidation is still outstanding or the generation cannot be read.
func (service *CoreService) listGeneration(ctx context.Context) (int64, bool) {
	if service.listCacheStale.Load() {
		if err := service.listCache.Invalidate(ctx); err != nil {
			slog.Warn("List: cached list still stale, bypassing cache", "error", err)
			return 0, false
		}
		service.listCacheStale.Store(false)
	}

	generation, err := service.listCache.Generation(ctx)
	if err != nil {
		slog.Warn("List: failed to read cache generation, bypassing cache", "error", err)
		return 0, false
	}
	return generation, true
}

// GetByID returns a single resource or a *NotFoundError.
func (service *CoreService) GetByID(ctx context.Context, id int64) (*database.Resource, error) {
	resource, err := service.databaseService.GetResourceByID(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "get resource", Err: err}
	}
	if resource == nil {
		return nil, &NotFoundError{ID: id}
	}
	return resource, nil
}

// Create validates the draft and optional upload, stores the image blob and persists a new resource.
// The blob is written before the record; when the record cannot be written the blob is removed again.
func (service *CoreService) Create(ctx context.Context, draft Draft, upload *Upload) (resource *database.Resource, err error) {
	start := time.Now()
	defer func() { service.metrics.Observe("create", resultOf(err), start) }()

	draft = draft.normalized()
	image, err := service.validate(draft, upload)
	if err != nil {
		return nil, err
	}

	now := service.now().UTC()
	resource = &database.Resource{
		Name:        draft.Name,
		Type:        draft.Type,
		Description: optionalString(draft.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if image != nil {
		key, storeErr := service.storeImage(ctx, image)
		if storeErr != nil {
			return nil, storeErr
		}
		resource.Images = &key
	}

	id, err := service.databaseService.CreateResource(ctx, resource)
	if err != nil {
		service.discardImage(ctx, resource.Images)
		return nil, &StorageError{Op: "create resource", Err: err}
	}
	resource.ID = id

	service.invalidateList(ctx)
	slog.Info("resource created", "resource_id", id, "has_image", resource.HasImage())
	return resource, nil
}

// Update overwrites name, type and description of an existing resource. When an upload is given the
// new blob replaces the image reference and the previous blob is deleted after the record was written.
func (service *CoreService) Update(ctx context.Context, id int64, draft Draft, upload *Upload) (resource *database.Resource, err error) {
	start := time.Now()
	defer func() { service.metrics.Observe("update", resultOf(err), start) }()

	existing, err := service.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	draft = draft.normalized()
	image, err := service.validate(draft, upload)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = draft.Name
	updated.Type = draft.Type
	updated.Description = optionalString(draft.Description)
	updated.UpdatedAt = service.nextUpdatedAt(existing.UpdatedAt)

	if image != nil {
		key, storeErr := service.storeImage(ctx, image)
		if storeErr != nil {
			return nil, storeErr
		}
		updated.Images = &key
	}

	if err := service.databaseService.UpdateResource(ctx, &updated); err != nil {
		if image != nil {
			service.discardImage(ctx, updated.Images)
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &StorageError{Op: "update resource", Err: err}
	}

	if image != nil && existing.HasImage() {
		service.discardImage(ctx, existing.Images)
	}

	service.invalidateList(ctx)
	slog.Info("resource updated", "resource_id", id, "image_replaced", image != nil)
	return &updated, nil
}

// Delete removes a resource permanently. Its image blob is removed as well unless
// storage.pruneOnDelete is disabled.
func (service *CoreService) Delete(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { service.metrics.Observe("delete", resultOf(err), start) }()

	existing, err := service.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := service.databaseService.DeleteResource(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return &StorageError{Op: "delete resource", Err: err}
	}

	if service.config.Storage.ShouldPruneOnDelete() && existing.HasImage() {
		service.discardImage(ctx, existing.Images)
	}

	service.invalidateList(ctx)
	slog.Info("resource deleted", "resource_id", id)
	return nil
}

// OpenImage opens the image blob of a resource. Resources without an image yield a *NotFoundError.
func (service *CoreService) OpenImage(ctx context.Context, id int64) (*blobstore.Object, error) {
	resource, err := service.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !resource.HasImage() {
		return nil, &NotFoundError{ID: id}
	}

	object, err := service.blobStore.Open(ctx, *resource.Images)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &StorageError{Op: "open image", Err: err}
	}
	return object, nil
}

func (service *CoreService) storeImage(ctx context.Context, image *validatedImage) (string, error) {
	key := blobstore.NewKey(imageDirectory, image.extension)
	if err := service.blobStore.Put(ctx, key, image.contentType, image.data); err != nil {
		return "", &StorageError{Op: "store image", Err: err}
	}
	return key, nil
}

// discardImage deletes a blob on a best-effort basis; failures leave an orphaned blob and are only logged.
func (service *CoreService) discardImage(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := service.blobStore.Delete(ctx, *key); err != nil {
		slog.Warn("failed to delete image blob", "key", *key, "error", err)
	}
}

func (service *CoreService) invalidateList(ctx context.Context) {
	if err := service.listCache.Invalidate(ctx); err != nil {
		service.listCacheStale.Store(true)
		slog.Error("failed to invalidate cached list", "error", err)
	}
}

// nextUpdatedAt returns the current time, or one nanosecond after previous when the clock has not advanced.
func (service *CoreService) nextUpdatedAt(previous time.Time) time.Time {
	now := service.now().UTC()
	if !now.After(previous) {
		return previous.Add(time.Nanosecond)
	}
	return now
}
