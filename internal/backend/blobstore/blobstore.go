package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob is stored under the requested key.
var ErrNotFound = errors.New("blob not found")

// Object is an opened blob. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// BlobStore stores opaque byte blobs under slash separated keys.
type BlobStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) error
	Open(ctx context.Context, key string) (*Object, error)
	// Delete removes the blob; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// NewKey generates a unique key below dir using the given file extension,
// for example "images/1b4e28ba-2fa1-41d2-883f-0016d3cca427.png".
func NewKey(dir, extension string) string {
	extension = strings.TrimPrefix(extension, ".")
	name := uuid.NewString()
	if extension != "" {
		name += "." + extension
	}
	return path.Join(dir, name)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty blob key")
	}
	if strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("invalid blob key: %q", key)
	}
	return nil
}
