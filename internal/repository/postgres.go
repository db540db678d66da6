package repository

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// NewPostgresDB creates and initializes a PostgreSQL database connection
func NewPostgresDB(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createPostgresTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createPostgresTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_links (
		id TEXT PRIMARY KEY,
		source_class TEXT NOT NULL,
		source_locator TEXT NOT NULL,
		source_display_name TEXT NOT NULL,
		store_id TEXT NOT NULL,
		document_id TEXT,
		sync_mode TEXT NOT NULL,
		sync_interval_minutes INTEGER,
		content_hash TEXT,
		content_size BIGINT NOT NULL DEFAULT 0,
		content_modified_at TIMESTAMP,
		mime_type TEXT,
		status TEXT NOT NULL DEFAULT 'not_synced',
		error_message TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		original_source_id TEXT,
		version_history TEXT NOT NULL DEFAULT '[]',
		last_synced_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(source_locator, store_id)
	);

	CREATE INDEX IF NOT EXISTS idx_sync_links_store_id ON sync_links(store_id);
	CREATE INDEX IF NOT EXISTS idx_sync_links_class ON sync_links(source_class);
	CREATE INDEX IF NOT EXISTS idx_sync_links_mode ON sync_links(sync_mode);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		display_name TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		content_size BIGINT NOT NULL DEFAULT 0,
		mime_type TEXT,
		uploaded_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_hash_store ON documents(content_hash, store_id);
	CREATE INDEX IF NOT EXISTS idx_documents_store_id ON documents(store_id);
	`

	_, err := db.Exec(schema)
	return err
}
