package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ValidationError collects all problems found in a config so they can be
// reported together
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid config: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid config: %d problems:\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Validate checks a parsed config for problems
func Validate(config *Config) error {
	var problems []string

	d := config.Dashboard

	if d.BaseURL == "" {
		problems = append(problems, "dashboard.baseURL is required")
	} else if u, err := url.Parse(d.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("dashboard.baseURL %q is not a valid URL", d.BaseURL))
	}

	if d.BackendURL != "" {
		if u, err := url.Parse(d.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("dashboard.backendURL %q is not a valid URL", d.BackendURL))
		}
	}

	if d.BackendURL == "" && len(d.DevUsers) == 0 {
		problems = append(problems, "either dashboard.backendURL or dashboard.devUsers must be configured")
	}

	for i, user := range d.DevUsers {
		if user.Email == "" {
			problems = append(problems, fmt.Sprintf("dashboard.devUsers[%d].email is required", i))
		}
		if !strings.HasPrefix(user.PasswordHash, "$2") {
			problems = append(problems, fmt.Sprintf("dashboard.devUsers[%d].passwordHash must be a bcrypt hash", i))
		}
	}

	switch d.Storage {
	case StorageKindMemory:
	case StorageKindFirestore:
		if d.GCPProject == "" {
			problems = append(problems, "dashboard.gcpProject is required when storage is \"firestore\"")
		}
	default:
		problems = append(problems, fmt.Sprintf("dashboard.storage %q is not supported (use \"memory\" or \"firestore\")", d.Storage))
	}

	if len(d.CSRFSecretRaw) > 0 && d.CSRFSecret != "" && len(d.CSRFSecret) < 32 {
		problems = append(problems, "dashboard.csrfSecret must be at least 32 bytes")
	}

	if config.Extension != nil {
		if config.Extension.ID == "" {
			problems = append(problems, "extension.id is required when extension is configured")
		}
		if config.Extension.Endpoint == "" {
			problems = append(problems, "extension.endpoint is required when extension is configured")
		} else if u, err := url.Parse(config.Extension.Endpoint); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			problems = append(problems, fmt.Sprintf("extension.endpoint %q must be a ws:// or wss:// URL", config.Extension.Endpoint))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateFile loads and validates a config file, printing results for the
// -validate CLI mode. Returns true when the config is valid.
func ValidateFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ failed to read %s: %v\n", path, err)
		return false
	}

	config, err := Parse(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		return false
	}

	if err := Validate(config); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			for _, problem := range verr.Problems {
				fmt.Fprintf(os.Stderr, "✗ %s\n", problem)
			}
		} else {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		}
		return false
	}

	fmt.Printf("✓ %s is valid\n", path)
	return true
}
