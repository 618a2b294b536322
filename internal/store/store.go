// Package store persists shared views so a fragment can be reached through a
// short id.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when no bookmark has the requested id.
var ErrNotFound = eris.New("store: bookmark not found")

// Bookmark is a saved URL fragment.
type Bookmark struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Fragment  string    `json:"fragment"`
	Hits      int       `json:"hits"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store defines bookmark persistence.
type Store interface {
	CreateBookmark(ctx context.Context, name, fragment string) (*Bookmark, error)
	// GetBookmark returns the bookmark and counts the visit.
	GetBookmark(ctx context.Context, id string) (*Bookmark, error)
	ListBookmarks(ctx context.Context, limit int) ([]Bookmark, error)
	DeleteBookmark(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
