// Package vault stores the account list, the capital map, and user settings
// in a single passphrase-encrypted file. Every mutating operation must be
// followed by Save before returning control to the caller; Save failures are
// fatal to the process.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

// AuthError reports that the stored blob could not be decrypted with the
// given passphrase. It is distinguishable from any other failure mode so
// callers can fail closed instead of proceeding with corrupt state.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "vault: incorrect passphrase" }

func (e *AuthError) Unwrap() error { return e.Err }

// Data is the structured document wrapped by the encrypted blob.
type Data struct {
	Accounts []model.Account `json:"accounts"`
	Capitals map[string]int  `json:"capitals,omitempty"`
	Settings model.Settings  `json:"settings"`
}

// Vault is the decrypted, in-memory view of the persisted blob.
type Vault struct {
	path       string
	passphrase string

	Data
}

// Exists reports whether a vault file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// New creates an empty vault at path and persists it immediately.
func New(path, passphrase string) (*Vault, error) {
	v := &Vault{
		path:       path,
		passphrase: passphrase,
		Data:       Data{Capitals: make(map[string]int)},
	}
	if err := v.Save(); err != nil {
		return nil, err
	}
	return v, nil
}

// Load decrypts the vault at path. A wrong passphrase returns *AuthError;
// partially decrypted data is never returned.
func Load(path, passphrase string) (*Vault, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}
	plaintext, err := decrypt(ciphertext, passphrase)
	if err != nil {
		return nil, err
	}
	v := &Vault{path: path, passphrase: passphrase}
	if err := json.Unmarshal(plaintext, &v.Data); err != nil {
		return nil, fmt.Errorf("parse vault contents: %w", err)
	}
	if v.Capitals == nil {
		v.Capitals = make(map[string]int)
	}
	return v, nil
}

// Save re-encrypts the vault contents and atomically overwrites the file.
func (v *Vault) Save() error {
	plaintext, err := json.MarshalIndent(&v.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal vault: %w", err)
	}
	ciphertext, err := encrypt(plaintext, v.passphrase)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(v.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create vault directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(v.path), ".vault-*")
	if err != nil {
		return fmt.Errorf("create temp vault: %w", err)
	}
	if _, err := tmp.Write(ciphertext); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp vault: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod vault: %w", err)
	}
	if err := os.Rename(tmp.Name(), v.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace vault: %w", err)
	}
	return nil
}

// ChangePassphrase re-encrypts the vault under a key derived from the new
// passphrase. Once the write completes the prior on-disk state is
// unrecoverable.
func (v *Vault) ChangePassphrase(newPassphrase string) error {
	old := v.passphrase
	v.passphrase = newPassphrase
	if err := v.Save(); err != nil {
		v.passphrase = old
		return err
	}
	return nil
}

// AddAccount appends the account and persists. The DMAT must be unique
// within the vault.
func (v *Vault) AddAccount(a model.Account) error {
	for _, existing := range v.Accounts {
		if existing.Dmat == a.Dmat {
			return fmt.Errorf("account with DMAT %s already exists", a.Dmat)
		}
	}
	v.Accounts = append(v.Accounts, a)
	return v.Save()
}

// RemoveAccount deletes the account at index (0-based) and persists.
func (v *Vault) RemoveAccount(index int) error {
	if index < 0 || index >= len(v.Accounts) {
		return errors.New("account index out of range")
	}
	v.Accounts = append(v.Accounts[:index], v.Accounts[index+1:]...)
	return v.Save()
}
