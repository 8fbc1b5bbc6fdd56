package cluster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lower-cases host",
			in:   "https://Host.Example.com:6333",
			want: "https://host.example.com:6333",
		},
		{
			name: "strips default https port",
			in:   "https://host.example:443/path",
			want: "https://host.example/path",
		},
		{
			name: "strips default http port",
			in:   "http://host.example:80",
			want: "http://host.example",
		},
		{
			name: "keeps non-default port",
			in:   "https://host.example:6333",
			want: "https://host.example:6333",
		},
		{
			name: "strips single trailing slash",
			in:   "https://host.example/path/",
			want: "https://host.example/path",
		},
		{
			name: "preserves query string",
			in:   "https://host.example/path?tenant=a",
			want: "https://host.example/path?tenant=a",
		},
		{
			name: "unparsable input returned verbatim",
			in:   "http://host.example:port/",
			want: "http://host.example:port/",
		},
		{
			name: "relative input returned verbatim",
			in:   "not-a-url",
			want: "not-a-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestDeriveStableName(t *testing.T) {
	t.Parallel()

	name := DeriveStableName("https://host.example/path")

	assert.True(t, strings.HasPrefix(name, "dyn-"))
	assert.Len(t, name, len("dyn-")+dynamicNameHexLen)
	// Deterministic.
	assert.Equal(t, name, DeriveStableName("https://host.example/path"))
	// Distinct inputs yield distinct names.
	assert.NotEqual(t, name, DeriveStableName("https://other.example/path"))
	// Derived names can never shadow the reserved fallback name.
	assert.NotEqual(t, DefaultClusterName, name)
}

func TestDeriveStableName_NormalizedEquivalence(t *testing.T) {
	t.Parallel()

	a := DeriveStableName(NormalizeURL("https://Host.example:443/path/"))
	b := DeriveStableName(NormalizeURL("https://host.example/path"))

	assert.Equal(t, a, b)
}
