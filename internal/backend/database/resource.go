package database

import "time"

// Resource is a single inventory record.
type Resource struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Description *string   `json:"description"`
	Images      *string   `json:"images"` // blob key of the uploaded image, nil when none was uploaded
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// resourceRow is the persisted shape of a Resource; timestamps are kept as unix nanoseconds
// so that SQLite and Postgres store them identically.
type resourceRow struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Type        string  `db:"type"`
	Description *string `db:"description"`
	Images      *string `db:"images"`
	CreatedAt   int64   `db:"created_at"`
	UpdatedAt   int64   `db:"updated_at"`
}

func (r *resourceRow) toResource() *Resource {
	return &Resource{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		Images:      r.Images,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, r.UpdatedAt).UTC(),
	}
}

// DescriptionOrEmpty returns the description or an empty string when none is set.
func (r *Resource) DescriptionOrEmpty() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// HasImage reports whether an image blob is referenced by the resource.
func (r *Resource) HasImage() bool {
	return r.Images != nil && *r.Images != ""
}
