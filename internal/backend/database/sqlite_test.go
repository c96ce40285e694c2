package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestDB(t *testing.T) DatabaseService {
	t.Helper()

	ds, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	_, err = ds.CreateDatabase()
	if err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func strPtr(s string) *string { return &s }

func newResource(name string, at time.Time) *Resource {
	return &Resource{
		Name:        name,
		Type:        "GPU",
		Description: strPtr("NVIDIA"),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestSQLite_DoesDatabaseExist(t *testing.T) {
	ds := newTestDB(t)
	if !ds.DoesDatabaseExist() {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestSQLite_CreateDatabase_Idempotent(t *testing.T) {
	ds := newTestDB(t)
	if _, err := ds.CreateDatabase(); err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
}

func TestSQLite_CreateAndGetByID(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 30, 0, 123, time.UTC)

	id, err := ds.CreateResource(ctx, newResource("RTX 4090", at))
	if err != nil {
		t.Fatalf("CreateResource error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := ds.GetResourceByID(ctx, id)
	if err != nil {
		t.Fatalf("GetResourceByID error: %v", err)
	}
	if got == nil {
		t.Fatalf("GetResourceByID returned nil; expected resource")
	}
	if got.ID != id || got.Name != "RTX 4090" || got.Type != "GPU" {
		t.Errorf("unexpected resource: %+v", got)
	}
	if got.DescriptionOrEmpty() != "NVIDIA" {
		t.Errorf("expected description NVIDIA, got %q", got.DescriptionOrEmpty())
	}
	if got.Images != nil {
		t.Errorf("expected nil images, got %q", *got.Images)
	}
	if !got.CreatedAt.Equal(at) || !got.UpdatedAt.Equal(at) {
		t.Errorf("timestamps not preserved: created=%v updated=%v want %v", got.CreatedAt, got.UpdatedAt, at)
	}
}

func TestSQLite_GetResourceByID_NonExistent(t *testing.T) {
	ds := newTestDB(t)
	got, err := ds.GetResourceByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetResourceByID(non-existent) error: %v", err)
	}
	if got != nil {
		t.Fatalf("GetResourceByID(non-existent) returned non-nil; expected nil")
	}
}

func TestSQLite_GetAllResources_PrimaryKeyOrder(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()
	at := time.Now().UTC()

	names := []string{"c", "a", "b"}
	for _, name := range names {
		if _, err := ds.CreateResource(ctx, newResource(name, at)); err != nil {
			t.Fatalf("CreateResource(%s) error: %v", name, err)
		}
	}

	resources, err := ds.GetAllResources(ctx)
	if err != nil {
		t.Fatalf("GetAllResources error: %v", err)
	}
	if len(resources) != len(names) {
		t.Fatalf("expected %d resources, got %d", len(names), len(resources))
	}
	for i, r := range resources {
		if r.Name != names[i] {
			t.Errorf("resources[%d].Name = %q, want %q", i, r.Name, names[i])
		}
		if i > 0 && r.ID <= resources[i-1].ID {
			t.Errorf("ids not increasing: %d after %d", r.ID, resources[i-1].ID)
		}
	}
}

func TestSQLite_GetAllResources_Empty(t *testing.T) {
	ds := newTestDB(t)
	resources, err := ds.GetAllResources(context.Background())
	if err != nil {
		t.Fatalf("GetAllResources error: %v", err)
	}
	if len(resources) != 0 {
		t.Fatalf("expected no resources, got %d", len(resources))
	}
}

func TestSQLite_UpdateResource(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()
	at := time.Now().UTC()

	id, err := ds.CreateResource(ctx, newResource("old", at))
	if err != nil {
		t.Fatalf("CreateResource error: %v", err)
	}

	later := at.Add(time.Minute)
	err = ds.UpdateResource(ctx, &Resource{
		ID:          id,
		Name:        "new",
		Type:        "Card",
		Description: nil,
		Images:      strPtr("images/a.png"),
		CreatedAt:   later, // ignored by update
		UpdatedAt:   later,
	})
	if err != nil {
		t.Fatalf("UpdateResource error: %v", err)
	}

	got, err := ds.GetResourceByID(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetResourceByID error: %v (resource %v)", err, got)
	}
	if got.Name != "new" || got.Type != "Card" {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Description != nil {
		t.Errorf("expected description cleared, got %q", *got.Description)
	}
	if got.Images == nil || *got.Images != "images/a.png" {
		t.Errorf("expected images reference to be set, got %v", got.Images)
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("created_at changed by update: got %v want %v", got.CreatedAt, at)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, later)
	}
}

func TestSQLite_UpdateResource_NonExistent(t *testing.T) {
	ds := newTestDB(t)
	err := ds.UpdateResource(context.Background(), &Resource{ID: 7, Name: "x", Type: "y", UpdatedAt: time.Now()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLite_DeleteResource(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	id, err := ds.CreateResource(ctx, newResource("to-delete", time.Now()))
	if err != nil {
		t.Fatalf("CreateResource error: %v", err)
	}
	if err := ds.DeleteResource(ctx, id); err != nil {
		t.Fatalf("DeleteResource error: %v", err)
	}

	got, err := ds.GetResourceByID(ctx, id)
	if err != nil {
		t.Fatalf("GetResourceByID after delete error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected resource to be deleted")
	}

	if err := ds.DeleteResource(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLite_IDsAreNotReused(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	first, err := ds.CreateResource(ctx, newResource("one", time.Now()))
	if err != nil {
		t.Fatalf("CreateResource error: %v", err)
	}
	if err := ds.DeleteResource(ctx, first); err != nil {
		t.Fatalf("DeleteResource error: %v", err)
	}
	second, err := ds.CreateResource(ctx, newResource("two", time.Now()))
	if err != nil {
		t.Fatalf("CreateResource error: %v", err)
	}
	if second <= first {
		t.Fatalf("expected id greater than %d, got %d", first, second)
	}
}

func TestSQLite_CountResources(t *testing.T) {
	ds := newTestDB(t)
	ctx := context.Background()

	count, err := ds.CountResources(ctx)
	if err != nil {
		t.Fatalf("CountResources error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
	for i := 0; i < 3; i++ {
		if _, err := ds.CreateResource(ctx, newResource("r", time.Now())); err != nil {
			t.Fatalf("CreateResource error: %v", err)
		}
	}
	count, err = ds.CountResources(ctx)
	if err != nil {
		t.Fatalf("CountResources error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}
