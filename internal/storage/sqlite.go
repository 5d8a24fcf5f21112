package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// NewSQLiteStore creates a new SQLite-backed embedding store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetEmbedding returns the cached vector for a content hash
func (s *SQLiteStore) GetEmbedding(ctx context.Context, contentHash, provider, model string) ([]float32, error) {
	var blob []byte
	var dimension int

	err := s.db.QueryRowContext(ctx, `
		SELECT dimension, vector FROM embeddings
		WHERE content_hash = ? AND provider = ? AND model = ?`,
		contentHash, provider, model,
	).Scan(&dimension, &blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding: %w", err)
	}

	vector := deserializeVector(blob)
	if len(vector) != dimension {
		// Corrupt row; report as absent so the caller re-embeds
		return nil, ErrNotFound
	}
	return vector, nil
}

// PutEmbedding stores or replaces a cached vector
func (s *SQLiteStore) PutEmbedding(ctx context.Context, rec *EmbeddingRecord) error {
	if rec.ContentHash == "" {
		return fmt.Errorf("content hash is required")
	}
	if len(rec.Vector) == 0 {
		return fmt.Errorf("vector is required")
	}

	dimension := rec.Dimension
	if dimension == 0 {
		dimension = len(rec.Vector)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (content_hash, pattern_id, provider, model, dimension, vector)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash, provider, model) DO UPDATE SET
			pattern_id = excluded.pattern_id,
			dimension = excluded.dimension,
			vector = excluded.vector,
			updated_at = CURRENT_TIMESTAMP`,
		rec.ContentHash, rec.PatternID, rec.Provider, rec.Model,
		dimension, serializeVector(rec.Vector),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

// CountEmbeddings reports how many vectors are cached
func (s *SQLiteStore) CountEmbeddings(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}

// PruneEmbeddings removes cached vectors whose content hash is not in
// the keep set
func (s *SQLiteStore) PruneEmbeddings(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		res, err := s.db.ExecContext(ctx, "DELETE FROM embeddings")
		if err != nil {
			return 0, fmt.Errorf("failed to prune embeddings: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keep)), ",")
	args := make([]interface{}, len(keep))
	for i, hash := range keep {
		args[i] = hash
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE content_hash NOT IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune embeddings: %w", err)
	}
	return res.RowsAffected()
}
