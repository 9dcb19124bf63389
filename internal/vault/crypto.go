package vault

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

// encrypt seals plaintext under a scrypt key derived from the passphrase.
func encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("encrypt vault: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypt vault: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize vault encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// decrypt opens ciphertext with the passphrase. A passphrase that does not
// match the blob returns *AuthError; any other failure is reported as is.
func decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, &AuthError{Err: err}
		}
		return nil, fmt.Errorf("decrypt vault: %w", err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		// A truncated or tampered payload fails the stream MAC here.
		return nil, fmt.Errorf("decrypt vault: %w", err)
	}
	return plaintext, nil
}
