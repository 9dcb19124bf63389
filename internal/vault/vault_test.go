package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

func testAccount(dmat, name string) model.Account {
	return model.Account{
		Dmat:      dmat,
		Password:  "hunter22",
		PIN:       1234,
		CapitalID: 130,
		CRN:       "CRN-" + name,
		Name:      name,
		Tag:       "fast",
	}
}

func TestVaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.age")

	v, err := New(path, "correct horse")
	require.NoError(t, err)

	a := testAccount("1301040000001111", "Alice")
	b := testAccount("1301040000002222", "Bob")
	require.NoError(t, v.AddAccount(a))
	require.NoError(t, v.AddAccount(b))
	v.Capitals["10400"] = 139
	v.Settings.TelegramBotToken = "tok"
	v.Settings.TelegramChatID = "42"
	v.Settings.LogLevel = "WARN"
	require.NoError(t, v.Save())

	loaded, err := Load(path, "correct horse")
	require.NoError(t, err)
	require.Len(t, loaded.Accounts, 2)
	assert.Equal(t, a, loaded.Accounts[0])
	assert.Equal(t, b, loaded.Accounts[1])
	assert.Equal(t, 139, loaded.Capitals["10400"])
	assert.True(t, loaded.Settings.TelegramEnabled())
	assert.Equal(t, "WARN", loaded.Settings.LogLevel)
}

func TestVaultWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.age")
	v, err := New(path, "right")
	require.NoError(t, err)
	require.NoError(t, v.AddAccount(testAccount("1301040000001111", "Alice")))

	loaded, err := Load(path, "wrong")
	require.Error(t, err)
	assert.Nil(t, loaded, "no partially decrypted data may be returned")

	var authErr *AuthError
	assert.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
}

func TestVaultRejectsDuplicateDmat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.age")
	v, err := New(path, "pw")
	require.NoError(t, err)

	require.NoError(t, v.AddAccount(testAccount("1301040000001111", "Alice")))
	err = v.AddAccount(testAccount("1301040000001111", "Clone"))
	require.Error(t, err)
	require.Len(t, v.Accounts, 1)
}

func TestVaultRemoveAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.age")
	v, err := New(path, "pw")
	require.NoError(t, err)
	require.NoError(t, v.AddAccount(testAccount("1301040000001111", "Alice")))
	require.NoError(t, v.AddAccount(testAccount("1301040000002222", "Bob")))

	require.Error(t, v.RemoveAccount(5))
	require.NoError(t, v.RemoveAccount(0))

	loaded, err := Load(path, "pw")
	require.NoError(t, err)
	require.Len(t, loaded.Accounts, 1)
	assert.Equal(t, "Bob", loaded.Accounts[0].Name)
}

func TestVaultChangePassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.age")
	v, err := New(path, "old")
	require.NoError(t, err)
	require.NoError(t, v.AddAccount(testAccount("1301040000001111", "Alice")))

	require.NoError(t, v.ChangePassphrase("new"))

	_, err = Load(path, "old")
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))

	loaded, err := Load(path, "new")
	require.NoError(t, err)
	assert.Equal(t, "Alice", loaded.Accounts[0].Name)
}

func TestVaultFileIsCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.age")
	v, err := New(path, "pw")
	require.NoError(t, err)
	require.NoError(t, v.AddAccount(testAccount("1301040000001111", "Alice")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter22")
	assert.NotContains(t, string(raw), "1301040000001111")
}
