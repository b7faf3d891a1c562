// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files
// and an optional dotenv file.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value. Dotenv variables are mapped to the same key
// names by lowercasing and replacing underscores with hyphens (NCBI_API_KEY becomes
// ncbi-api-key). Directory files take precedence over dotenv values.
//
// Supported keys: ncbi-api-key, ncbi-email, ner-endpoint-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Well-known secret names.
const (
	NCBIAPIKey       = "ncbi-api-key"
	NCBIEmail        = "ncbi-email"
	NEREndpointToken = "ner-endpoint-token"
)

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns fallback when it is non-empty, and otherwise the stored value
// for key. Explicit configuration always wins over a stored secret.
func (s Secrets) Get(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return s[key]
}

// Keys returns the loaded key names in sorted order.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv parses a dotenv file without touching the process environment.
// A missing file yields an empty map.
func LoadEnv(path string) (Secrets, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	secrets := make(Secrets, len(vars))
	for k, v := range vars {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		secrets[strings.ReplaceAll(strings.ToLower(k), "_", "-")] = v
	}
	return secrets, nil
}

// LoadAll merges the dotenv file at envPath under the secrets directory dir.
func LoadAll(dir, envPath string) (Secrets, error) {
	merged, err := LoadEnv(envPath)
	if err != nil {
		return nil, err
	}
	files, err := Load(dir)
	if err != nil {
		return nil, err
	}
	for k, v := range files {
		merged[k] = v
	}
	return merged, nil
}
