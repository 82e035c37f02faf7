// Package vault seals backup payloads with an age passphrase.
package vault

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

// DefaultWorkFactor is the scrypt cost used by Seal (2^18 iterations).
const DefaultWorkFactor = 18

// header starts every binary age file.
var header = []byte("age-encryption.org/v1\n")

// ErrPassphraseRequired is returned when sealed data is opened without a
// passphrase.
var ErrPassphraseRequired = errors.New("data is sealed; passphrase required")

// IsSealed reports whether data looks like an age file.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, header)
}

// Seal encrypts plaintext to a passphrase.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	return SealWork(plaintext, passphrase, DefaultWorkFactor)
}

// SealWork is Seal with an explicit scrypt work factor.
func SealWork(plaintext []byte, passphrase string, workFactor int) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase is required")
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(workFactor)

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Open decrypts data sealed by Seal.
func Open(ciphertext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong passphrase or tampered data): %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}
