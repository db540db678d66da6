package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/docsync/server/internal/models"
)

// DocumentRepository handles duplicate-record persistence (SQLite)
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, document_id, store_id, filename, display_name,
	content_hash, content_size, mime_type, uploaded_at`

func scanDocument(row interface {
	Scan(dest ...interface{}) error
}) (*models.Document, error) {
	var doc models.Document
	var mimeType sql.NullString

	err := row.Scan(
		&doc.ID,
		&doc.DocumentID,
		&doc.StoreID,
		&doc.Filename,
		&doc.DisplayName,
		&doc.ContentHash,
		&doc.ContentSize,
		&mimeType,
		&doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.MimeType = mimeType.String
	return &doc, nil
}

// GetByID retrieves a document record by its ID
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`

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
func (r *DocumentRepository) GetByHash(ctx context.Context, contentHash, storeID string) (*models.Document, error) {
	normalized := strings.ToLower(contentHash)
	query := `SELECT ` + documentColumns + ` FROM documents
		WHERE content_hash = ? AND store_id = ?
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
func (r *DocumentRepository) List(ctx context.Context, storeID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []interface{}

	if storeID != "" {
		query += ` WHERE store_id = ?`
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
func (r *DocumentRepository) Add(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
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
func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
