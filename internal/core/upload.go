package core

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
)

// ReadUpload reads a submitted file. At most maxBytes+1 bytes are read so that
// oversized files are still reported by validation instead of being buffered whole.
// A nil header or an empty file input yields a nil upload.
func ReadUpload(file *multipart.FileHeader, maxBytes int64) (*Upload, error) {
	if file == nil || (file.Filename == "" && file.Size == 0) {
		return nil, nil
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %s: %w", file.Filename, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("ReadUpload: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", file.Filename, err)
	}
	return &Upload{Filename: file.Filename, Size: file.Size, Data: data}, nil
}
