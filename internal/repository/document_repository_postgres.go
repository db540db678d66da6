package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/docsync/server/internal/models"
)

// DocumentRepositoryPostgres handles duplicate-record persistence (PostgreSQL)
type DocumentRepositoryPostgres struct {
	db *sql.DB
}

// NewDocumentRepositoryPostgres creates a new DocumentRepositoryPostgres
func NewDocumentRepositoryPostgres(db *sql.DB) *DocumentRepositoryPostgres {
	return &DocumentRepositoryPostgres{db: db}
}

// GetByID retrieves a document record by its ID
func (r *DocumentRepositoryPostgres) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByHash retrieves the earliest document matching (content_hash, store_id)
func (r *DocumentRepositoryPostgres) GetByHash(ctx context.Context, contentHash, storeID string) (*models.Document, error) {
	normalized := strings.ToLower(contentHash)
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE content_hash = $1 AND store_id = $2
		ORDER BY uploaded_at ASC LIMIT 1`

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, normalized, storeID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List retrieves document records, optionally filtered by store
func (r *DocumentRepositoryPostgres) List(ctx context.Context, storeID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []interface{}

	if storeID != "" {
		query += ` WHERE store_id = $1`
		args = append(args, storeID)
	}
	query += ` ORDER BY uploaded_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if docs == nil {
		docs = []*models.Document{}
	}

	return docs, rows.Err()
}

// Add inserts a new document record
func (r *DocumentRepositoryPostgres) Add(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID,
		doc.DocumentID,
		doc.StoreID,
		doc.Filename,
		doc.DisplayName,
		doc.ContentHash,
		doc.ContentSize,
		doc.MimeType,
		doc.UploadedAt,
	)
	return err
}

// Delete removes a document record, returning whether it existed
func (r *DocumentRepositoryPostgres) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
