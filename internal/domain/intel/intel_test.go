package intel

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"evil.tk", "evil.tk"},
		{"EVIL.TK", "evil.tk"},
		{"  Evil.Tk  ", "evil.tk"},
		{"https://evil.tk/path?q=1#f", "evil.tk"},
		{"http://www.evil.tk:8080/", "evil.tk"},
		{"user@evil.tk", "evil.tk"},
		{"evil.tk.", "evil.tk"},
		{"www.evil.tk", "evil.tk"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDomain(tt.input))
		})
	}
}

func TestBundle_Lookup(t *testing.T) {
	bundle := NewBundle([]string{"evil.tk", "Phishing-Site.ML", "https://www.bad.example/path"}, "v1", "test")

	t.Run("listed domains are confirmed regardless of input formatting", func(t *testing.T) {
		for _, d := range []string{"evil.tk", "EVIL.TK", "https://evil.tk/x", "phishing-site.ml", "bad.example"} {
			res := bundle.Lookup(d)
			assert.Equal(t, StatusConfirmed, res.Status, "domain %s", d)
			assert.True(t, bundle.IsDenied(d))
		}
	})

	t.Run("unlisted domain is never confirmed", func(t *testing.T) {
		res := bundle.Lookup("google.com")
		assert.NotEqual(t, StatusConfirmed, res.Status)
		assert.False(t, bundle.IsDenied("google.com"))
	})

	t.Run("empty input is clean", func(t *testing.T) {
		assert.Equal(t, StatusClean, bundle.Lookup("").Status)
	})
}

func TestBundle_NoFalseNegatives(t *testing.T) {
	// The Bloom stage may report false positives, never false negatives:
	// every inserted domain must pass the filter.
	domains := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		domains = append(domains, fmt.Sprintf("malicious-%03d.example", i))
	}
	bundle := NewBundle(domains, "v1", "test")

	require.Equal(t, 200, bundle.EntryCount)
	for _, d := range domains {
		assert.True(t, bundle.MightContain(d), "false negative for %s", d)
		assert.True(t, bundle.IsDenied(d))
	}
}

func TestBundle_ConfirmedImpliesExact(t *testing.T) {
	bundle := NewBundle([]string{"evil.tk"}, "v1", "test")

	// IsDenied must never be satisfied by the Bloom stage alone
	probes := []string{"evil.tk", "evil.tk.", "levil.tk", "evil.tk2", "google.com"}
	for _, p := range probes {
		if bundle.IsDenied(p) {
			assert.Equal(t, "evil.tk", NormalizeDomain(p),
				"confirmed hit for %s without exact membership", p)
		}
	}
}

func TestBundle_Deduplicates(t *testing.T) {
	bundle := NewBundle([]string{"evil.tk", "EVIL.TK", "https://evil.tk", "", "   "}, "v1", "test")
	assert.Equal(t, 1, bundle.EntryCount)
}

func TestDefaultBundle(t *testing.T) {
	bundle := DefaultBundle()

	assert.Equal(t, bundledFeedVersion, bundle.Version)
	assert.Equal(t, "bundled", bundle.Source)
	assert.Equal(t, len(bundledDenyList), bundle.EntryCount)
	assert.False(t, bundle.BuildTimestamp.IsZero())

	for _, d := range bundledDenyList {
		assert.True(t, bundle.IsDenied(d), "bundled entry %s must be denied", d)
	}
}

func TestDefaultBundleWithExtra(t *testing.T) {
	t.Run("merges a local feed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feed.txt")
		content := "# local additions\n\nlocal-threat.example\n  spaced-threat.example  \n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		bundle, err := DefaultBundleWithExtra(path)
		require.NoError(t, err)

		assert.True(t, bundle.IsDenied("local-threat.example"))
		assert.True(t, bundle.IsDenied("spaced-threat.example"))
		assert.True(t, bundle.IsDenied("evil.tk"), "bundled entries must survive the merge")
		assert.Contains(t, bundle.Version, "+local")
		assert.Equal(t, path, bundle.Source)
	})

	t.Run("empty path yields the bundled snapshot", func(t *testing.T) {
		bundle, err := DefaultBundleWithExtra("")
		require.NoError(t, err)
		assert.Equal(t, len(bundledDenyList), bundle.EntryCount)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := DefaultBundleWithExtra(filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}
