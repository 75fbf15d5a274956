package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrguard/url-security/internal/config"
)

func extractFor(t *testing.T, raw string) FeatureVector {
	t.Helper()
	norm := NewNormalizer().Normalize(raw)
	require.True(t, norm.Parseable)
	p, err := ParseURL(norm.Normalized)
	require.NoError(t, err)
	return ExtractFeatures(norm.Normalized, p)
}

func TestExtractFeatures_Dimensions(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		check func(t *testing.T, v FeatureVector)
	}{
		{
			name: "https flag",
			url:  "https://example.com/",
			check: func(t *testing.T, v FeatureVector) {
				assert.Equal(t, 1.0, v[4])
				assert.Zero(t, v[5])
				assert.Zero(t, v[13])
				assert.Zero(t, v[14])
			},
		},
		{
			name: "IP host flag",
			url:  "http://192.168.1.1/admin",
			check: func(t *testing.T, v FeatureVector) {
				assert.Equal(t, 1.0, v[5])
				assert.Zero(t, v[4])
			},
		},
		{
			name: "shortener flag",
			url:  "https://bit.ly/3xYzAbC",
			check: func(t *testing.T, v FeatureVector) {
				assert.Equal(t, 1.0, v[13])
			},
		},
		{
			name: "suspicious TLD flag",
			url:  "http://evil.tk/",
			check: func(t *testing.T, v FeatureVector) {
				assert.Equal(t, 1.0, v[14])
			},
		},
		{
			name: "at symbol flag",
			url:  "http://paypal.com@evil.tk/",
			check: func(t *testing.T, v FeatureVector) {
				assert.Equal(t, 1.0, v[9])
			},
		},
		{
			name: "nonstandard port flag",
			url:  "http://example.com:8081/",
			check: func(t *testing.T, v FeatureVector) {
				assert.Equal(t, 1.0, v[12])
			},
		},
		{
			name: "query parameter count",
			url:  "https://example.com/?a=1&b=2&c=3",
			check: func(t *testing.T, v FeatureVector) {
				assert.InDelta(t, 0.3, v[8], 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, extractFor(t, tt.url))
		})
	}
}

func TestExtractFeatures_AllDimensionsBounded(t *testing.T) {
	urls := []string{
		"https://example.com/",
		"http://" + strings.Repeat("sub.", 12) + "example.com/" + strings.Repeat("a-b.", 80) + "?q=" + strings.Repeat("x", 400),
		"http://192.168.1.1:9999/" + strings.Repeat("login/", 40),
	}

	for _, raw := range urls {
		v := extractFor(t, raw)
		for i, dim := range v {
			assert.GreaterOrEqual(t, dim, 0.0, "dimension %d (%s)", i, FeatureNames()[i])
			assert.LessOrEqual(t, dim, 1.0, "dimension %d (%s)", i, FeatureNames()[i])
		}
	}
}

func TestExtractFeatures_NilURL(t *testing.T) {
	assert.Equal(t, FeatureVector{}, ExtractFeatures("http://example.com", nil))
}

func TestEnsembleScorer(t *testing.T) {
	cfg := config.Latest()
	scorer := NewEnsembleScorer(cfg.Model, cfg.Weights)

	t.Run("probability stays in the open unit interval", func(t *testing.T) {
		var zero FeatureVector
		p := scorer.Probability(zero)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
	})

	t.Run("benign vector scores near zero", func(t *testing.T) {
		v := extractFor(t, "https://www.google.com/")
		assert.LessOrEqual(t, scorer.Score(v), 5)
	})

	t.Run("hostile vector approaches the ensemble budget", func(t *testing.T) {
		var v FeatureVector
		v[5] = 1  // IP host
		v[9] = 1  // at symbol
		v[13] = 1 // shortener
		v[14] = 1 // suspicious TLD
		score := scorer.Score(v)
		assert.Greater(t, score, cfg.Weights.EnsembleBudget/2)
		assert.LessOrEqual(t, score, cfg.Weights.EnsembleBudget)
	})

	t.Run("score never exceeds the budget", func(t *testing.T) {
		var v FeatureVector
		for i := range v {
			v[i] = 1
		}
		assert.LessOrEqual(t, scorer.Score(v), cfg.Weights.EnsembleBudget)
	})
}
