package repository

import (
	"context"

	"github.com/docsync/server/internal/models"
)

// LinkFilter narrows List results. Zero values mean "no filter".
type LinkFilter struct {
	StoreID     string
	SourceClass models.SourceClass
	AutoOnly    bool
}

// LinkRepo defines the interface for sync link persistence operations
type LinkRepo interface {
	GetByID(ctx context.Context, id string) (*models.SyncLink, error)
	GetByLocator(ctx context.Context, locator, storeID string) (*models.SyncLink, error)
	List(ctx context.Context, filter LinkFilter) ([]*models.SyncLink, error)
	Add(ctx context.Context, link *models.SyncLink) error
	Update(ctx context.Context, link *models.SyncLink) error
	Delete(ctx context.Context, id string) (bool, error)
}

// DocumentRepo defines the interface for duplicate-record persistence
type DocumentRepo interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	GetByHash(ctx context.Context, contentHash, storeID string) (*models.Document, error)
	List(ctx context.Context, storeID string) ([]*models.Document, error)
	Add(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) (bool, error)
}
