package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrguard/url-security/internal/domain"
)

func TestBuildHints(t *testing.T) {
	hits := []domain.SignalHit{
		{Signal: domain.SignalInsecureProtocol, Weight: 5, Evidence: "plain http"},
		{Signal: domain.SignalShortener, Weight: 15, Evidence: "bit.ly"},
		{Signal: domain.SignalAtSymbol, Weight: 15, Evidence: "userinfo"},
	}

	hints := BuildHints(hits)
	require.Len(t, hints, 3)

	// Sorted by descending reduction, signal name breaking the tie
	assert.Equal(t, domain.SignalAtSymbol, hints[0].Signal)
	assert.Equal(t, domain.SignalShortener, hints[1].Signal)
	assert.Equal(t, domain.SignalInsecureProtocol, hints[2].Signal)

	for _, h := range hints {
		assert.NotEmpty(t, h.Explanation)
		assert.Positive(t, h.ScoreReduction)
	}
}

func TestBuildHints_SkipsUnknownAndZeroWeight(t *testing.T) {
	hits := []domain.SignalHit{
		{Signal: domain.Signal("NOT_A_REAL_SIGNAL"), Weight: 10},
		{Signal: domain.SignalInvalidURL, Weight: 0},
		{Signal: domain.SignalIPHost, Weight: 0},
		{Signal: domain.SignalIPHost, Weight: 15, Evidence: "192.168.1.1"},
	}

	hints := BuildHints(hits)
	require.Len(t, hints, 1)
	assert.Equal(t, domain.SignalIPHost, hints[0].Signal)
	assert.Equal(t, 15, hints[0].ScoreReduction)
	assert.Equal(t, "192.168.1.1", hints[0].CurrentValue)
}

func TestBuildHints_EveryScorableSignalHasATemplate(t *testing.T) {
	// Every signal except the two non-actionable ones must yield guidance
	for _, s := range domain.AllSignals() {
		if s == domain.SignalInvalidURL || s == domain.SignalThreatIntel {
			continue
		}
		hints := BuildHints([]domain.SignalHit{{Signal: s, Weight: 1}})
		assert.Len(t, hints, 1, "signal %s has no hint template", s)
	}
}

func TestSummarizeHints(t *testing.T) {
	t.Run("empty hint list", func(t *testing.T) {
		assert.Equal(t, "No triggered signals to act on.", SummarizeHints(nil))
	})

	t.Run("totals and numbering", func(t *testing.T) {
		hints := BuildHints([]domain.SignalHit{
			{Signal: domain.SignalShortener, Weight: 15},
			{Signal: domain.SignalInsecureProtocol, Weight: 5},
		})
		out := SummarizeHints(hints)

		assert.Contains(t, out, "2 signal(s)")
		assert.Contains(t, out, "20 points")
		assert.Contains(t, out, "1. ")
		assert.Contains(t, out, "2. ")
		assert.Contains(t, out, "(-15)")
		assert.Contains(t, out, "(-5)")
		assert.False(t, strings.HasSuffix(out, "\n"))
	})
}
