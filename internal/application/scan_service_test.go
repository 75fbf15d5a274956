package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain"
	"github.com/mehrguard/url-security/internal/domain/analysis"
	"github.com/mehrguard/url-security/internal/domain/intel"
)

// memoryStore is an in-memory ports.AssessmentStore for tests
type memoryStore struct {
	records []domain.ScanRecord
	saveErr error
}

func (s *memoryStore) SaveScan(_ context.Context, record *domain.ScanRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append(s.records, *record)
	return nil
}

func (s *memoryStore) RecentScans(_ context.Context, limit int) ([]domain.ScanRecord, error) {
	out := append([]domain.ScanRecord(nil), s.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScannedAt.After(out[j].ScannedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) HighRiskScans(_ context.Context, limit int) ([]domain.ScanRecord, error) {
	var out []domain.ScanRecord
	for _, r := range s.records {
		if r.Assessment.Verdict == domain.VerdictMalicious || r.Assessment.Verdict == domain.VerdictSuspicious {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Assessment.Score > out[j].Assessment.Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newService(store *memoryStore) *ScanService {
	analyzer := analysis.NewAnalyzer(config.Latest(), intel.NewBundle(nil, "test", "test"))
	return NewScanService(analyzer, store, quietLogger())
}

func TestScanService_Scan(t *testing.T) {
	store := &memoryStore{}
	service := newService(store)
	ctx := context.Background()

	record, err := service.Scan(ctx, "https://www.google.com", true)
	require.NoError(t, err)

	assert.NotEqual(t, record.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "https://www.google.com", record.URL)
	assert.Equal(t, domain.VerdictSafe, record.Assessment.Verdict)
	assert.False(t, record.ScannedAt.IsZero())
	assert.Len(t, store.records, 1)
}

func TestScanService_ScanWithoutPersist(t *testing.T) {
	store := &memoryStore{}
	service := newService(store)

	_, err := service.Scan(context.Background(), "https://example.com", false)
	require.NoError(t, err)
	assert.Empty(t, store.records)
}

func TestScanService_StorageFailureStillReturnsAssessment(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("connection refused")}
	service := newService(store)

	record, err := service.Scan(context.Background(), "https://example.com", true)
	require.Error(t, err)
	require.NotNil(t, record, "the assessment must survive a failed save")
	assert.Equal(t, domain.VerdictSafe, record.Assessment.Verdict)
}

func TestScanService_NilStoreDisablesPersistence(t *testing.T) {
	service := NewScanService(
		analysis.NewAnalyzer(config.Latest(), intel.NewBundle(nil, "test", "test")),
		nil, quietLogger())
	ctx := context.Background()

	_, err := service.Scan(ctx, "https://example.com", true)
	assert.NoError(t, err, "persist flag is a no-op without a store")

	_, err = service.History(ctx, 10)
	assert.Error(t, err)
	_, err = service.HighRisk(ctx, 10)
	assert.Error(t, err)
}

func TestScanService_HistoryAndHighRisk(t *testing.T) {
	store := &memoryStore{}
	service := newService(store)
	ctx := context.Background()

	for _, url := range []string{
		"https://www.google.com",
		"http://paypal.com@evil.tk/login?password=x",
		"https://example.org",
	} {
		_, err := service.Scan(ctx, url, true)
		require.NoError(t, err)
	}

	history, err := service.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	highRisk, err := service.HighRisk(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, highRisk)
	for _, r := range highRisk {
		assert.NotEqual(t, domain.VerdictSafe, r.Assessment.Verdict)
	}
}

func TestScanService_Explain(t *testing.T) {
	service := newService(&memoryStore{})

	record, err := service.Scan(context.Background(), "http://paypal.com@evil.tk/login", false)
	require.NoError(t, err)

	hints := service.Explain(record.Assessment)
	require.NotEmpty(t, hints)
	for i := 1; i < len(hints); i++ {
		assert.GreaterOrEqual(t, hints[i-1].ScoreReduction, hints[i].ScoreReduction)
	}
}

func TestScanService_Features(t *testing.T) {
	service := newService(&memoryStore{})

	v, ok := service.Features("https://bit.ly/abc")
	require.True(t, ok)
	assert.Equal(t, 1.0, v[13])

	_, ok = service.Features("http://[broken")
	assert.False(t, ok)
}
