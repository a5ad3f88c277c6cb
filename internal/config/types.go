package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// StorageKind selects the session/user tracking backend
type StorageKind string

const (
	StorageKindMemory    StorageKind = "memory"
	StorageKindFirestore StorageKind = "firestore"
)

// DevUser is a statically configured development account. The password is
// stored only as a bcrypt hash.
type DevUser struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"passwordHash"`
}

// DashboardConfig configures the front service itself
type DashboardConfig struct {
	BaseURL        string   `json:"baseURL"`
	Addr           string   `json:"addr"`
	BackendURL     string   `json:"backendURL,omitempty"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`

	Storage           StorageKind `json:"storage,omitempty"`
	GCPProject        string      `json:"gcpProject,omitempty"`
	FirestoreDatabase string      `json:"firestoreDatabase,omitempty"`
	CollectionPrefix  string      `json:"collectionPrefix,omitempty"`

	// CSRF protection is enabled when a secret is configured. The secret
	// must come through an environment reference, never inline.
	CSRFSecretRaw json.RawMessage `json:"csrfSecret,omitempty"`
	CSRFSecret    Secret          `json:"-"`

	// DevUsers back the local credential validator when no backend URL is
	// configured
	DevUsers []DevUser `json:"devUsers,omitempty"`
}

// ExtensionConfig identifies the companion extension and its messaging
// endpoint. When absent, the bridge reports every probe as missing.
type ExtensionConfig struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
}

// Config is the complete scrapter-front configuration
type Config struct {
	Version   string           `json:"version"`
	Dashboard DashboardConfig  `json:"dashboard"`
	Extension *ExtensionConfig `json:"extension,omitempty"`
}

// resolveEnvValue resolves a config value that is either a plain JSON string
// or an environment reference of the form {"$env": "VAR_NAME"}
func resolveEnvValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}

	var ref struct {
		Env string `json:"$env"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil || ref.Env == "" {
		return "", fmt.Errorf("expected a string or {\"$env\": \"VAR_NAME\"}")
	}

	value, ok := os.LookupEnv(ref.Env)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", ref.Env)
	}
	return value, nil
}
