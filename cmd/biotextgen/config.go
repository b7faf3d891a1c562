// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/biotextgen/internal/secrets"
	"github.com/pdiddy/biotextgen/pkg/types"
)

// setDefaults registers every field of types.DefaultConfig with viper so
// that config files and BIOTEXTGEN_* variables can override any of them.
func setDefaults() error {
	data, err := yaml.Marshal(types.DefaultConfig())
	if err != nil {
		return err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return err
	}
	for k, v := range m {
		viper.SetDefault(k, v)
	}
	return nil
}

// loadConfig builds the pipeline configuration from defaults, the config
// file, the environment and flags, then fills credentials from secrets.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Ingest.Email = loadedSecrets.Get(secrets.NCBIEmail, cfg.Ingest.Email)
	cfg.Ingest.APIKey = loadedSecrets.Get(secrets.NCBIAPIKey, cfg.Ingest.APIKey)
	cfg.Annotate.Token = loadedSecrets.Get(secrets.NEREndpointToken, cfg.Annotate.Token)
	return cfg, nil
}
