package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/docsync/server/internal/models"
)

// LinkRepository handles sync link persistence (SQLite)
type LinkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new LinkRepository
func NewLinkRepository(db *sql.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

const linkColumns = `id, source_class, source_locator, source_display_name, store_id,
	document_id, sync_mode, sync_interval_minutes, content_hash, content_size,
	content_modified_at, mime_type, status, error_message, version,
	original_source_id, version_history, last_synced_at, created_at, updated_at`

func scanLink(row interface {
	Scan(dest ...interface{}) error
}) (*models.SyncLink, error) {
	var link models.SyncLink
	var contentHash, mimeType, errorMessage sql.NullString
	var historyJSON string

	err := row.Scan(
		&link.ID,
		&link.SourceClass,
		&link.SourceLocator,
		&link.SourceDisplayName,
		&link.StoreID,
		&link.DocumentID,
		&link.SyncMode,
		&link.SyncIntervalMinutes,
		&contentHash,
		&link.ContentSize,
		&link.ContentModifiedAt,
		&mimeType,
		&link.Status,
		&errorMessage,
		&link.Version,
		&link.OriginalSourceID,
		&historyJSON,
		&link.LastSyncedAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.ContentHash = contentHash.String
	link.MimeType = mimeType.String
	link.ErrorMessage = errorMessage.String

	if err := json.Unmarshal([]byte(historyJSON), &link.VersionHistory); err != nil {
		// A corrupt history column must not make the link unreadable
		link.VersionHistory = []models.VersionEntry{}
	}
	if link.VersionHistory == nil {
		link.VersionHistory = []models.VersionEntry{}
	}

	return &link, nil
}

func marshalHistory(history []models.VersionEntry) (string, error) {
	if history == nil {
		history = []models.VersionEntry{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetByID retrieves a link by its ID
func (r *LinkRepository) GetByID(ctx context.Context, id string) (*models.SyncLink, error) {
	query := `SELECT ` + linkColumns + ` FROM sync_links WHERE id = ?`

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
func (r *LinkRepository) GetByLocator(ctx context.Context, locator, storeID string) (*models.SyncLink, error) {
	query := `SELECT ` + linkColumns + ` FROM sync_links WHERE source_locator = ? AND store_id = ?`

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
func (r *LinkRepository) List(ctx context.Context, filter LinkFilter) ([]*models.SyncLink, error) {
	query := `SELECT ` + linkColumns + ` FROM sync_links WHERE 1=1`
	var args []interface{}

	if filter.StoreID != "" {
		query += ` AND store_id = ?`
		args = append(args, filter.StoreID)
	}
	if filter.SourceClass != "" {
		query += ` AND source_class = ?`
		args = append(args, filter.SourceClass)
	}
	if filter.AutoOnly {
		query += ` AND sync_mode = ?`
		args = append(args, models.SyncModeAuto)
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
func (r *LinkRepository) Add(ctx context.Context, link *models.SyncLink) error {
	historyJSON, err := marshalHistory(link.VersionHistory)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sync_links (` + linkColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
func (r *LinkRepository) Update(ctx context.Context, link *models.SyncLink) error {
	historyJSON, err := marshalHistory(link.VersionHistory)
	if err != nil {
		return err
	}

	query := `
		UPDATE sync_links SET
			source_display_name = ?,
			document_id = ?,
			sync_mode = ?,
			sync_interval_minutes = ?,
			content_hash = ?,
			content_size = ?,
			content_modified_at = ?,
			mime_type = ?,
			status = ?,
			error_message = ?,
			version = ?,
			original_source_id = ?,
			version_history = ?,
			last_synced_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
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
func (r *LinkRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sync_links WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
