package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mehrguard/url-security/internal/domain"
	"github.com/mehrguard/url-security/internal/domain/analysis"
	"github.com/mehrguard/url-security/internal/ports"
)

// ScanService orchestrates URL scanning at the application boundary: it
// runs the pure scoring pipeline, assigns scan identity, optionally
// persists history, and logs notable results.
//
// Error handling strategy: scoring itself cannot fail (malformed input
// yields an UNKNOWN verdict), so the only errors here are storage errors,
// and a failed save never suppresses the assessment the user asked for.
type ScanService struct {
	analyzer *analysis.Analyzer
	store    ports.AssessmentStore // nil disables persistence
	log      *logrus.Logger
}

// NewScanService creates a scan service with dependency injection. A nil
// store disables history persistence; the logger must be non-nil.
func NewScanService(analyzer *analysis.Analyzer, store ports.AssessmentStore, log *logrus.Logger) *ScanService {
	return &ScanService{analyzer: analyzer, store: store, log: log}
}

// Scan analyzes one URL and, when a store is configured and persist is
// set, records the result. The returned record is always populated; a
// storage failure is reported through the error alongside it.
func (s *ScanService) Scan(ctx context.Context, rawURL string, persist bool) (*domain.ScanRecord, error) {
	assessment := s.analyzer.Analyze(rawURL)

	record := &domain.ScanRecord{
		ID:         uuid.New(),
		URL:        rawURL,
		Assessment: assessment,
		ScannedAt:  time.Now().UTC(),
	}

	switch assessment.Verdict {
	case domain.VerdictMalicious:
		s.log.WithFields(logrus.Fields{
			"url":     assessment.NormalizedURL,
			"score":   assessment.Score,
			"flags":   assessment.Flags,
			"scan_id": record.ID,
		}).Warn("malicious URL detected")
	case domain.VerdictSuspicious:
		s.log.WithFields(logrus.Fields{
			"url":     assessment.NormalizedURL,
			"score":   assessment.Score,
			"scan_id": record.ID,
		}).Info("suspicious URL detected")
	default:
		s.log.WithFields(logrus.Fields{
			"url":     assessment.NormalizedURL,
			"verdict": assessment.Verdict,
			"scan_id": record.ID,
		}).Debug("scan completed")
	}

	if persist && s.store != nil {
		if err := s.store.SaveScan(ctx, record); err != nil {
			s.log.WithError(err).Error("failed to persist scan")
			return record, fmt.Errorf("persist scan %s: %w", record.ID, err)
		}
	}
	return record, nil
}

// Explain produces the ranked counterfactual hints for an assessment
func (s *ScanService) Explain(assessment domain.RiskAssessment) []domain.CounterfactualHint {
	return analysis.BuildHints(assessment.Hits)
}

// Features exposes the read-only feature vector surface consumed by the
// privacy-preserving feedback module. It is never called during scoring.
func (s *ScanService) Features(rawURL string) (analysis.FeatureVector, bool) {
	return s.analyzer.Features(rawURL)
}

// History returns recent scans, most recent first
func (s *ScanService) History(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("scan history requires a configured store")
	}
	return s.store.RecentScans(ctx, limit)
}

// HighRisk returns recent non-SAFE scans, highest score first
func (s *ScanService) HighRisk(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	if s.store == nil {
		return nil, fmt.Errorf("scan history requires a configured store")
	}
	return s.store.HighRiskScans(ctx, limit)
}
