package blobstore

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	TypeFileSystem = "filesystem"
	TypeS3         = "s3"
)

// S3Options configures the S3 compatible object storage backend.
type S3Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

func NewBlobStore(ctx context.Context, storeType, root string, s3Options S3Options) (store BlobStore, err error) {
	switch storeType {
	case TypeFileSystem:
		store, err = NewFileSystemStore(root)
	case TypeS3:
		store, err = NewS3Store(ctx, s3Options)
	default:
		return nil, fmt.Errorf("unsupported blob store: %s", storeType)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("blob store initialized", "type", storeType)
	return store, nil
}
