package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// defaultRoster is used when no credentials file is configured.
var defaultRoster = []struct {
	username string
	password string
	role     schema.Rank
}{
	{"iago", "2005", schema.RankSupremo},
	{"krozz", "11082010", schema.RankSubDon},
}

// DefaultCredentials hashes the built-in roster with the given bcrypt cost.
func DefaultCredentials(cost int) ([]Credential, error) {
	creds := make([]Credential, 0, len(defaultRoster))
	for _, r := range defaultRoster {
		h, err := HashPassword(r.password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", r.username, err)
		}
		creds = append(creds, Credential{Username: r.username, PasswordHash: h, Role: r.role})
	}
	return creds, nil
}

// ParseCredentials decodes a JSON-with-comments array of credentials.
func ParseCredentials(data []byte) ([]Credential, error) {
	var creds []Credential
	if err := json.Unmarshal(jsonc.ToJSON(data), &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return creds, nil
}

// LoadProvider reads the credentials file at path, or falls back to the
// built-in roster when path is empty.
func LoadProvider(path string) (*StaticProvider, error) {
	if path == "" {
		creds, err := DefaultCredentials(0)
		if err != nil {
			return nil, err
		}
		return NewStaticProvider(creds)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds, err := ParseCredentials(data)
	if err != nil {
		return nil, err
	}
	return NewStaticProvider(creds)
}
