package core

import (
	"context"
	"fmt"
	"log/slog"
)

var sampleResources = []Draft{
	{Name: "Sample Resource 1", Type: "Type A", Description: "This is a description of Sample Resource 1."},
	{Name: "Sample Resource 2", Type: "Type B", Description: "This is a description of Sample Resource 2."},
	{Name: "Sample Resource 3", Type: "Type C", Description: "This is a description of Sample Resource 3."},
}

// Seed inserts the sample resources when the store is empty and returns how many were created.
func (service *CoreService) Seed(ctx context.Context) (int, error) {
	count, err := service.databaseService.CountResources(ctx)
	if err != nil {
		return 0, &StorageError{Op: "count resources", Err: err}
	}
	if count > 0 {
		slog.Debug("skipping seed, resources already present", "count", count)
		return 0, nil
	}

	for i, draft := range sampleResources {
		if _, err := service.Create(ctx, draft, nil); err != nil {
			return i, fmt.Errorf("failed to seed resource %q: %w", draft.Name, err)
		}
	}
	slog.Info("seeded sample resources", "count", len(sampleResources))
	return len(sampleResources), nil
}
