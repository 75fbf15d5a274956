package httpapi

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrguard/url-security/internal/application"
	"github.com/mehrguard/url-security/internal/config"
	"github.com/mehrguard/url-security/internal/domain"
	"github.com/mehrguard/url-security/internal/domain/analysis"
	"github.com/mehrguard/url-security/internal/domain/intel"
)

func newTestServer() *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	analyzer := analysis.NewAnalyzer(config.Latest(), intel.NewBundle([]string{"evil.tk"}, "test", "test"))
	return New(application.NewScanService(analyzer, nil, log), log)
}

func doRequest(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	newTestServer().Routes().ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServer_Scan(t *testing.T) {
	t.Run("safe URL", func(t *testing.T) {
		rec := doRequest(t, http.MethodPost, "/scan", `{"url": "https://www.google.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp scanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.VerdictSafe, resp.Assessment.Verdict)
		assert.NotEmpty(t, resp.ScanID)
	})

	t.Run("denied domain short-circuits to malicious", func(t *testing.T) {
		rec := doRequest(t, http.MethodPost, "/scan", `{"url": "http://evil.tk/qr"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp scanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.VerdictMalicious, resp.Assessment.Verdict)
		assert.Equal(t, 100, resp.Assessment.Score)
	})

	t.Run("risky URL carries hints", func(t *testing.T) {
		rec := doRequest(t, http.MethodPost, "/scan", `{"url": "http://paypal.com@bad.example/login"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp scanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Hints)
	})

	t.Run("missing url field", func(t *testing.T) {
		rec := doRequest(t, http.MethodPost, "/scan", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, http.MethodPost, "/scan", `{"url": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_HistoryWithoutStore(t *testing.T) {
	rec := doRequest(t, http.MethodGet, "/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}
