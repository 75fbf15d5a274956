package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrguard/url-security/internal/domain"
)

func TestNewRiskConfig_Validation(t *testing.T) {
	valid := func() (WeightConfig, ThresholdConfig, FeatureConfig, ModelConfig) {
		base, err := buildV1_0_0()
		require.NoError(t, err)
		return base.Weights, base.Thresholds, base.Features, base.Model
	}

	t.Run("valid calibration is accepted", func(t *testing.T) {
		w, th, f, m := valid()
		cfg, err := NewRiskConfig("9.9.9", w, th, f, m)
		require.NoError(t, err)
		assert.Equal(t, "9.9.9", cfg.Version)
	})

	t.Run("empty version is rejected", func(t *testing.T) {
		w, th, f, m := valid()
		_, err := NewRiskConfig("", w, th, f, m)
		assert.Error(t, err)
	})

	t.Run("safeMax at suspiciousMax is rejected", func(t *testing.T) {
		w, th, f, m := valid()
		th.SafeMax = th.SuspiciousMax
		_, err := NewRiskConfig("9.9.9", w, th, f, m)
		assert.Error(t, err)
	})

	t.Run("inverted thresholds are rejected", func(t *testing.T) {
		w, th, f, m := valid()
		th.SafeMax = 70
		th.SuspiciousMax = 30
		_, err := NewRiskConfig("9.9.9", w, th, f, m)
		assert.Error(t, err)
	})

	t.Run("suspiciousMax above 100 is rejected", func(t *testing.T) {
		w, th, f, m := valid()
		th.SuspiciousMax = 101
		_, err := NewRiskConfig("9.9.9", w, th, f, m)
		assert.Error(t, err)
	})

	t.Run("zero component budget is rejected", func(t *testing.T) {
		w, th, f, m := valid()
		w.EnsembleBudget = 0
		_, err := NewRiskConfig("9.9.9", w, th, f, m)
		assert.Error(t, err)
	})

	t.Run("non-positive max URL length is rejected", func(t *testing.T) {
		w, th, f, m := valid()
		th.MaxURLLength = 0
		_, err := NewRiskConfig("9.9.9", w, th, f, m)
		assert.Error(t, err)
	})
}

func TestForVersion(t *testing.T) {
	t.Run("registered versions resolve", func(t *testing.T) {
		for _, v := range Versions() {
			cfg, err := ForVersion(v)
			require.NoError(t, err)
			assert.Equal(t, v, cfg.Version)
		}
	})

	t.Run("unknown version is an error", func(t *testing.T) {
		_, err := ForVersion("0.0.9")
		assert.Error(t, err)
	})

	t.Run("malformed version is an error", func(t *testing.T) {
		_, err := ForVersion("not-semver")
		assert.Error(t, err)
	})
}

func TestLatest(t *testing.T) {
	cfg := Latest()
	assert.Equal(t, "1.1.0", cfg.Version)

	// Each call returns an independent copy
	other := Latest()
	other.Thresholds.SafeMax = 1
	assert.NotEqual(t, other.Thresholds.SafeMax, Latest().Thresholds.SafeMax)
}

func TestVersions(t *testing.T) {
	vs := Versions()
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, vs)
}

func TestCalibrationDifferences(t *testing.T) {
	v100, err := ForVersion("1.0.0")
	require.NoError(t, err)
	v110, err := ForVersion("1.1.0")
	require.NoError(t, err)

	// 1.1.0 raised shortener and at-symbol weights after QR redirect abuse
	assert.Greater(t, v110.Weights.Shortener, v100.Weights.Shortener)
	assert.Greater(t, v110.Weights.AtSymbol, v100.Weights.AtSymbol)

	// Thresholds and budget split are stable across the two
	assert.Equal(t, v100.Thresholds, v110.Thresholds)
	assert.Equal(t, v100.Weights.HeuristicBudget, v110.Weights.HeuristicBudget)
}

func TestRiskConfig_JSONRoundTrip(t *testing.T) {
	cfg := Latest()

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, restored)
}

func TestFromJSON_RejectsInvalidSnapshot(t *testing.T) {
	t.Run("garbage input", func(t *testing.T) {
		_, err := FromJSON([]byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("revalidates thresholds", func(t *testing.T) {
		cfg := Latest()
		cfg.Thresholds.SafeMax = 90
		cfg.Thresholds.SuspiciousMax = 50
		data, err := json.Marshal(cfg)
		require.NoError(t, err)

		_, err = FromJSON(data)
		assert.Error(t, err)
	})
}

func TestSignalWeight_CoversEverySignal(t *testing.T) {
	cfg := Latest()

	for _, s := range domain.AllSignals() {
		w := cfg.Weights.SignalWeight(s)
		assert.GreaterOrEqual(t, w, 0, "signal %s", s)
		if s != domain.SignalInvalidURL {
			assert.Positive(t, w, "scorable signal %s must carry weight", s)
		}
	}

	assert.Equal(t, 100, cfg.Weights.SignalWeight(domain.SignalThreatIntel))
	assert.Zero(t, cfg.Weights.SignalWeight(domain.Signal("NO_SUCH_SIGNAL")))
}

func TestBudgetSplitSumsToTotal(t *testing.T) {
	for _, v := range Versions() {
		cfg, err := ForVersion(v)
		require.NoError(t, err)
		total := cfg.Weights.HeuristicBudget + cfg.Weights.EnsembleBudget +
			cfg.Weights.TLDBudget + cfg.Weights.BrandBudget
		assert.Equal(t, 100, total, "version %s", v)
	}
}
