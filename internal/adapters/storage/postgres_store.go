package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mehrguard/url-security/internal/domain"
)

// PostgresStore implements ports.AssessmentStore for PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens and verifies a PostgreSQL connection
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// InitSchema creates the scan-history table if it doesn't exist.
// Flags and details are stored as JSONB: they are display payloads, never
// query dimensions beyond the indexed columns pulled out alongside them.
func (s *PostgresStore) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id UUID PRIMARY KEY,
		url TEXT NOT NULL,
		normalized_url TEXT NOT NULL,
		score INT NOT NULL CHECK (score BETWEEN 0 AND 100),
		verdict VARCHAR(12) NOT NULL CHECK (verdict IN ('SAFE', 'SUSPICIOUS', 'MALICIOUS', 'UNKNOWN')),
		confidence DOUBLE PRECISION NOT NULL,
		flags JSONB NOT NULL DEFAULT '[]',
		details JSONB NOT NULL DEFAULT '{}',
		scanned_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- Backs RecentScans
	CREATE INDEX IF NOT EXISTS idx_scans_scanned_at ON scans(scanned_at DESC);

	-- Backs HighRiskScans
	CREATE INDEX IF NOT EXISTS idx_scans_verdict_score ON scans(verdict, score DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveScan persists one completed scan
func (s *PostgresStore) SaveScan(ctx context.Context, record *domain.ScanRecord) error {
	flags, err := json.Marshal(record.Assessment.Flags)
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}
	details, err := json.Marshal(record.Assessment.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scans (id, url, normalized_url, score, verdict, confidence, flags, details, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, record.URL, record.Assessment.NormalizedURL,
		record.Assessment.Score, record.Assessment.Verdict, record.Assessment.Confidence,
		flags, details, record.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan %s: %w", record.ID, err)
	}
	return nil
}

// RecentScans returns the newest scans, most recent first
func (s *PostgresStore) RecentScans(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, normalized_url, score, verdict, confidence, flags, details, scanned_at
		FROM scans
		ORDER BY scanned_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent scans: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// HighRiskScans returns recent non-SAFE scans, highest score first
func (s *PostgresStore) HighRiskScans(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, normalized_url, score, verdict, confidence, flags, details, scanned_at
		FROM scans
		WHERE verdict IN ('MALICIOUS', 'SUSPICIOUS')
		ORDER BY score DESC, scanned_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query high-risk scans: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]domain.ScanRecord, error) {
	var records []domain.ScanRecord
	for rows.Next() {
		var rec domain.ScanRecord
		var flags, details []byte
		err := rows.Scan(&rec.ID, &rec.URL, &rec.Assessment.NormalizedURL,
			&rec.Assessment.Score, &rec.Assessment.Verdict, &rec.Assessment.Confidence,
			&flags, &details, &rec.ScannedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		rec.Assessment.InputURL = rec.URL
		if err := json.Unmarshal(flags, &rec.Assessment.Flags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal flags: %w", err)
		}
		if err := json.Unmarshal(details, &rec.Assessment.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal details: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
