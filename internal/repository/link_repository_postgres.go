package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docsync/server/internal/models"
)

// LinkRepositoryPostgres handles sync link persistence (PostgreSQL)
type LinkRepositoryPostgres struct {
	db *sql.DB
}

// NewLinkRepositoryPostgres creates a new LinkRepositoryPostgres
func NewLinkRepositoryPostgres(db *sql.DB) *LinkRepositoryPostgres {
	return &LinkRepositoryPostgres{db: db}
}

// GetByID retrieves a link by its ID
func (r *LinkRepositoryPostgres) GetByID(ctx context.Context, id string) (*models.SyncLink, error) {
	query := `SELECT ` + linkColumns + ` FROM sync_links WHERE id = $1`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// GetByLocator retrieves a link by its source locator within a store
func (r *LinkRepositoryPostgres) GetByLocator(ctx context.Context, locator, storeID string) (*models.SyncLink, error) {
	query := `SELECT ` + linkColumns + ` FROM sync_links WHERE source_locator = $1 AND store_id = $2`

	link, err := scanLink(r.db.QueryRowContext(ctx, query, locator, storeID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// List retrieves links matching the filter, oldest first
func (r *LinkRepositoryPostgres) List(ctx context.Context, filter LinkFilter) ([]*models.SyncLink, error) {
	query := `SELECT ` + linkColumns + ` FROM sync_links WHERE 1=1`
	var args []interface{}

	if filter.StoreID != "" {
		args = append(args, filter.StoreID)
		query += fmt.Sprintf(` AND store_id = $%d`, len(args))
	}
	if filter.SourceClass != "" {
		args = append(args, filter.SourceClass)
		query += fmt.Sprintf(` AND source_class = $%d`, len(args))
	}
	if filter.AutoOnly {
		args = append(args, models.SyncModeAuto)
		query += fmt.Sprintf(` AND sync_mode = $%d`, len(args))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.SyncLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	if links == nil {
		links = []*models.SyncLink{}
	}

	return links, rows.Err()
}

// Add inserts a new link
func (r *LinkRepositoryPostgres) Add(ctx context.Context, link *models.SyncLink) error {
	historyJSON, err := marshalHistory(link.VersionHistory)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = r.db.ExecContext(ctx, query,
		link.ID,
		link.SourceClass,
		link.SourceLocator,
		link.SourceDisplayName,
		link.StoreID,
		link.DocumentID,
		link.SyncMode,
		link.SyncIntervalMinutes,
		link.ContentHash,
		link.ContentSize,
		link.ContentModifiedAt,
		link.MimeType,
		link.Status,
		link.ErrorMessage,
		link.Version,
		link.OriginalSourceID,
		historyJSON,
		link.LastSyncedAt,
		link.CreatedAt,
		link.UpdatedAt,
	)
	return err
}

// Update persists the link's mutable state
func (r *LinkRepositoryPostgres) Update(ctx context.Context, link *models.SyncLink) error {
	historyJSON, err := marshalHistory(link.VersionHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE sync_links SET
			source_display_name = $1,
			document_id = $2,
			sync_mode = $3,
			sync_interval_minutes = $4,
			content_hash = $5,
			content_size = $6,
			content_modified_at = $7,
			mime_type = $8,
			status = $9,
			error_message = $10,
			version = $11,
			original_source_id = $12,
			version_history = $13,
			last_synced_at = $14,
			updated_at = NOW()
		WHERE id = $15
	`

	result, err := r.db.ExecContext(ctx, query,
		link.SourceDisplayName,
		link.DocumentID,
		link.SyncMode,
		link.SyncIntervalMinutes,
		link.ContentHash,
		link.ContentSize,
		link.ContentModifiedAt,
		link.MimeType,
		link.Status,
		link.ErrorMessage,
		link.Version,
		link.OriginalSourceID,
		historyJSON,
		link.LastSyncedAt,
		link.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrLinkNotFound
	}
	return nil
}

// Delete removes a link, returning whether it existed
func (r *LinkRepositoryPostgres) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sync_links WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
