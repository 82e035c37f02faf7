// Package auth verifies admin credentials and issues session tokens.
//
// The credential scheme is a fixed allow-list. Every failure returns the same
// ErrAccessDenied so callers cannot tell a wrong username from a wrong
// password.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// ErrAccessDenied is the single failure returned for any rejected login.
var ErrAccessDenied = errors.New("ACESSO NEGADO: FALHA NA CHAVE DE CRIPTOGRAFIA")

// Provider checks a username/password pair.
type Provider interface {
	Verify(username, password string) (schema.Identity, error)
}

// Credential is one allow-list entry.
type Credential struct {
	Username     string      `json:"username"`
	PasswordHash string      `json:"password_hash"`
	Role         schema.Rank `json:"role"`
}

// StaticProvider verifies against an in-memory allow-list of bcrypt hashes.
type StaticProvider struct {
	entries map[string]Credential
	// dummy is compared when the username is unknown so both failure paths
	// cost one bcrypt comparison.
	dummy []byte
}

// NewStaticProvider builds a provider from credentials. Usernames are matched
// case-insensitively.
func NewStaticProvider(creds []Credential) (*StaticProvider, error) {
	if len(creds) == 0 {
		return nil, fmt.Errorf("at least one credential is required")
	}
	p := &StaticProvider{entries: make(map[string]Credential, len(creds))}
	cost := bcrypt.DefaultCost
	for _, c := range creds {
		name := normalize(c.Username)
		if name == "" {
			return nil, fmt.Errorf("credential with empty username")
		}
		if !c.Role.Valid() {
			return nil, fmt.Errorf("credential %q: unknown role %q", name, c.Role)
		}
		hashCost, err := bcrypt.Cost([]byte(c.PasswordHash))
		if err != nil {
			return nil, fmt.Errorf("credential %q: %w", name, err)
		}
		cost = hashCost
		c.Username = name
		p.entries[name] = c
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("imperivm-dummy"), cost)
	if err != nil {
		return nil, fmt.Errorf("generate dummy hash: %w", err)
	}
	p.dummy = dummy
	return p, nil
}

// Verify returns the identity for a valid pair or ErrAccessDenied.
func (p *StaticProvider) Verify(username, password string) (schema.Identity, error) {
	entry, ok := p.entries[normalize(username)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(password))
		return schema.Identity{}, ErrAccessDenied
	}
	if err := bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)); err != nil {
		return schema.Identity{}, ErrAccessDenied
	}
	return schema.Identity{Name: entry.Username, Role: entry.Role}, nil
}

// HashPassword returns a bcrypt hash suitable for Credential.PasswordHash.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
