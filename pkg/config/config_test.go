package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiver-mcp/quiver/pkg/ratelimit"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quiver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultURL, cfg.Qdrant.URL)
	assert.Empty(t, cfg.Qdrant.APIKey)
	assert.Equal(t, ratelimit.DefaultMaxRequests, cfg.RateLimit.MaxRequests)
	assert.Equal(t, ratelimit.DefaultWindow, cfg.RateLimit.Window)
	assert.Empty(t, cfg.Clusters)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
host: 0.0.0.0
port: "7000"
qdrant:
  url: https://main.example:6333
  apiKey: main-key
defaultCluster: prod
clusters:
  - name: prod
    url: https://prod.example:6333
    apiKey: prod-key
    description: production cluster
  - name: staging
    url: https://staging.example:6333
rateLimit:
  maxRequests: 5
  window: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "https://main.example:6333", cfg.Qdrant.URL)
	assert.Equal(t, "main-key", cfg.Qdrant.APIKey)
	assert.Equal(t, "prod", cfg.DefaultCluster)
	assert.Equal(t, 5, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window)

	require.Len(t, cfg.Clusters, 2)
	assert.Equal(t, "prod", cfg.Clusters[0].Name)
	assert.Equal(t, "prod-key", cfg.Clusters[0].APIKey)
	assert.Equal(t, "production cluster", cfg.Clusters[0].Description)
	assert.Equal(t, "staging", cfg.Clusters[1].Name)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
qdrant:
  url: https://only.example:6333
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://only.example:6333", cfg.Qdrant.URL)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, ratelimit.DefaultMaxRequests, cfg.RateLimit.MaxRequests)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QUIVER_HOST", "0.0.0.0")
	t.Setenv("QUIVER_QDRANT_URL", "https://env.example:6333")
	t.Setenv("QUIVER_QDRANT_APIKEY", "env-key")
	t.Setenv("QUIVER_RATELIMIT_MAXREQUESTS", "7")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "https://env.example:6333", cfg.Qdrant.URL)
	assert.Equal(t, "env-key", cfg.Qdrant.APIKey)
	assert.Equal(t, 7, cfg.RateLimit.MaxRequests)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
qdrant:
  url: https://file.example:6333
`)
	t.Setenv("QUIVER_QDRANT_URL", "https://env.example:6333")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example:6333", cfg.Qdrant.URL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "host: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestConfig_ClusterConfig(t *testing.T) {
	cfg := &Config{
		Qdrant:         QdrantConfig{URL: "https://main.example:6333", APIKey: "k"},
		DefaultCluster: "prod",
	}

	cc := cfg.ClusterConfig()
	assert.Equal(t, "https://main.example:6333", cc.URL)
	assert.Equal(t, "k", cc.APIKey)
	assert.Equal(t, "prod", cc.DefaultCluster)
}
