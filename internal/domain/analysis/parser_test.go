package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		host           string
		etld           string
		registrable    string
		subdomains     []string
		subdomainDepth int
		isIP           bool
	}{
		{
			name:        "bare registrable domain",
			input:       "https://example.com/path",
			host:        "example.com",
			etld:        "com",
			registrable: "example.com",
		},
		{
			name:           "single subdomain",
			input:          "https://www.example.com",
			host:           "www.example.com",
			etld:           "com",
			registrable:    "example.com",
			subdomains:     []string{"www"},
			subdomainDepth: 1,
		},
		{
			name:           "multi-label public suffix",
			input:          "https://www.example.co.uk/login",
			host:           "www.example.co.uk",
			etld:           "co.uk",
			registrable:    "example.co.uk",
			subdomains:     []string{"www"},
			subdomainDepth: 1,
		},
		{
			name:           "deep subdomain chain under com.au",
			input:          "https://mail.store.example.com.au",
			host:           "mail.store.example.com.au",
			etld:           "com.au",
			registrable:    "example.com.au",
			subdomains:     []string{"mail", "store"},
			subdomainDepth: 2,
		},
		{
			name:        "single-label host is its own TLD and registrable domain",
			input:       "http://localhost:3000/dev",
			host:        "localhost",
			etld:        "localhost",
			registrable: "localhost",
		},
		{
			name:        "IP host has no TLD",
			input:       "http://192.168.1.1/admin",
			host:        "192.168.1.1",
			etld:        "",
			registrable: "192.168.1.1",
			isIP:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseURL(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.host, p.Host)
			assert.Equal(t, tt.etld, p.EffectiveTLD)
			assert.Equal(t, tt.registrable, p.RegistrableDomain)
			assert.Equal(t, tt.subdomains, p.Subdomains)
			assert.Equal(t, tt.subdomainDepth, p.SubdomainDepth)
			assert.Equal(t, tt.isIP, p.IsIPHost)
		})
	}
}

func TestParseURL_Components(t *testing.T) {
	p, err := ParseURL("https://user:pw@sub.example.com:8443/a/b?q=1&r=2#frag")
	require.NoError(t, err)

	assert.Equal(t, "https", p.Scheme)
	assert.Equal(t, "user:pw", p.Userinfo)
	assert.Equal(t, "sub.example.com", p.Host)
	assert.Equal(t, "8443", p.Port)
	assert.Equal(t, "/a/b", p.Path)
	assert.Equal(t, "q=1&r=2", p.Query)
	assert.Equal(t, "frag", p.Fragment)
}

func TestParseURL_OpaqueScheme(t *testing.T) {
	p, err := ParseURL("mailto:user@example.com")
	require.NoError(t, err)

	assert.Equal(t, "mailto", p.Scheme)
	assert.Empty(t, p.Host)
	assert.Equal(t, "user@example.com", p.Path)
}

func TestParseURL_EmptyHost(t *testing.T) {
	_, err := ParseURL("http:///just-a-path")
	assert.Error(t, err)
}
