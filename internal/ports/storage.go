package ports

import (
	"context"

	"github.com/mehrguard/url-security/internal/domain"
)

// AssessmentStore defines the contract for persisting and querying scan
// history. Storage is strictly downstream of scoring: nothing read from a
// store ever influences an assessment.
type AssessmentStore interface {
	// SaveScan persists one completed scan
	SaveScan(ctx context.Context, record *domain.ScanRecord) error

	// RecentScans returns the newest scans, most recent first
	RecentScans(ctx context.Context, limit int) ([]domain.ScanRecord, error)

	// HighRiskScans returns recent MALICIOUS and SUSPICIOUS scans,
	// highest score first
	HighRiskScans(ctx context.Context, limit int) ([]domain.ScanRecord, error)

	// Lifecycle
	Close() error
}
