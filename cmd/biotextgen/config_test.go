// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/biotextgen/internal/secrets"
	"github.com/pdiddy/biotextgen/pkg/types"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	loadedSecrets = nil
	t.Cleanup(func() {
		viper.Reset()
		loadedSecrets = nil
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetConfig(t)
	require.NoError(t, setDefaults())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	resetConfig(t)
	require.NoError(t, setDefaults())

	path := filepath.Join(t.TempDir(), "biotextgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: /tmp/bio
dedup_policy: last
ingest:
  request_delay: 250ms
  terms: [glioma]
dataset:
  template_policy: round_robin
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	viper.SetEnvPrefix("BIOTEXTGEN")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()
	t.Setenv("BIOTEXTGEN_DATASET_SEED", "7")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/bio", cfg.OutputDir)
	assert.Equal(t, types.DedupLast, cfg.DedupPolicy)
	assert.Equal(t, 250*time.Millisecond, cfg.Ingest.RequestDelay)
	assert.Equal(t, []string{"glioma"}, cfg.Ingest.Terms)
	assert.Equal(t, types.PolicyRoundRobin, cfg.Dataset.TemplatePolicy)
	assert.Equal(t, int64(7), cfg.Dataset.Seed)
	assert.Equal(t, 60*time.Second, cfg.Ingest.Timeout, "unset fields keep defaults")
}

func TestLoadConfig_Secrets(t *testing.T) {
	resetConfig(t)
	require.NoError(t, setDefaults())
	loadedSecrets = secrets.Secrets{
		secrets.NCBIAPIKey:       "k",
		secrets.NCBIEmail:        "me@lab.org",
		secrets.NEREndpointToken: "tok",
	}

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Ingest.APIKey)
	assert.Equal(t, "me@lab.org", cfg.Ingest.Email)
	assert.Equal(t, "tok", cfg.Annotate.Token)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}
