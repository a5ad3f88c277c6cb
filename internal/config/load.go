package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SupportedVersion is the config schema version this binary understands
const SupportedVersion = "v1"

// Load reads, parses, and validates a config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Parse decodes config JSON and resolves environment references. It does not
// validate the result.
func Parse(data []byte) (*Config, error) {
	var versionProbe struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &versionProbe); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if versionProbe.Version == "" {
		return nil, fmt.Errorf("config is missing required field \"version\"")
	}
	if !strings.HasPrefix(versionProbe.Version, SupportedVersion) {
		return nil, fmt.Errorf("unsupported config version %q (expected %s)", versionProbe.Version, SupportedVersion)
	}

	var config Config
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(config.Dashboard.CSRFSecretRaw) > 0 {
		secret, err := resolveEnvValue(config.Dashboard.CSRFSecretRaw)
		if err != nil {
			return nil, fmt.Errorf("dashboard.csrfSecret: %w", err)
		}
		config.Dashboard.CSRFSecret = Secret(secret)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Dashboard.Addr == "" {
		config.Dashboard.Addr = ":8080"
	}
	if config.Dashboard.Storage == "" {
		config.Dashboard.Storage = StorageKindMemory
	}
	if config.Dashboard.CollectionPrefix == "" {
		config.Dashboard.CollectionPrefix = "scrapter"
	}
}

// WriteTemplate writes a starter config to path, refusing to overwrite an
// existing file
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	template := `{
  "version": "v1",
  "dashboard": {
    "baseURL": "http://localhost:8080",
    "addr": ":8080",
    "backendURL": "http://localhost:9000",
    "allowedOrigins": ["http://localhost:8080"],
    "storage": "memory",
    "csrfSecret": {"$env": "SCRAPTER_CSRF_SECRET"}
  },
  "extension": {
    "id": "scrapter-extension",
    "endpoint": "ws://127.0.0.1:9471/extension/sync"
  }
}
`
	return os.WriteFile(path, []byte(template), 0o644)
}
