package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Create tables
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Sync links: one binding between a content source and a destination document
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
		content_size INTEGER NOT NULL DEFAULT 0,
		content_modified_at DATETIME,
		mime_type TEXT,
		status TEXT NOT NULL DEFAULT 'not_synced',
		error_message TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		original_source_id TEXT,
		version_history TEXT NOT NULL DEFAULT '[]',
		last_synced_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_locator, store_id)
	);

	CREATE INDEX IF NOT EXISTS idx_sync_links_store_id ON sync_links(store_id);
	CREATE INDEX IF NOT EXISTS idx_sync_links_class ON sync_links(source_class);
	CREATE INDEX IF NOT EXISTS idx_sync_links_mode ON sync_links(sync_mode);
	CREATE INDEX IF NOT EXISTS idx_sync_links_status ON sync_links(status);

	-- Documents: duplicate-rejection records for direct uploads
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		store_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		display_name TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		content_size INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT,
		uploaded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_hash_store ON documents(content_hash, store_id);
	CREATE INDEX IF NOT EXISTS idx_documents_store_id ON documents(store_id);
	`

	_, err := db.Exec(schema)
	return err
}
