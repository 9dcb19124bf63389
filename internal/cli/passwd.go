package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type passwdCmd struct {
	app     *App
	account int
}

func (*passwdCmd) Name() string     { return "passwd" }
func (*passwdCmd) Synopsis() string { return "change the vault passphrase or an account's portal password" }
func (*passwdCmd) Usage() string {
	return `autoipo passwd [-account N]

  Without flags, re-encrypts the vault under a new passphrase.
  With -account, updates the stored portal password of the given account
  (1-based id from 'autoipo list') instead; use this after changing the
  password on the portal itself.

`
}

func (c *passwdCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.account, "account", 0, "1-based account id whose portal password to update")
}

func (c *passwdCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}

	if c.account > 0 {
		if c.account > len(v.Accounts) {
			return fail(fmt.Errorf("account id must be between 1 and %d", len(v.Accounts)))
		}
		acc := &v.Accounts[c.account-1]
		password, err := readSecret(fmt.Sprintf("New portal password for %s: ", acc.Dmat))
		if err != nil {
			return fail(err)
		}
		if len(password) < minPortalPasswordLen {
			return fail(fmt.Errorf("portal password must be at least %d characters", minPortalPasswordLen))
		}
		acc.Password = password
		if err := v.Save(); err != nil {
			return fail(fmt.Errorf("save vault: %w", err))
		}
		fmt.Println("Portal password updated.")
		return subcommands.ExitSuccess
	}

	fmt.Println("Choose a new vault passphrase.")
	first, err := readSecret("New passphrase: ")
	if err != nil {
		return fail(err)
	}
	second, err := readSecret("Confirm passphrase: ")
	if err != nil {
		return fail(err)
	}
	if first != second {
		return fail(fmt.Errorf("passphrases do not match"))
	}
	if first == "" {
		return fail(fmt.Errorf("passphrase must not be empty"))
	}
	if err := v.ChangePassphrase(first); err != nil {
		return fail(fmt.Errorf("change passphrase: %w", err))
	}
	fmt.Println("Vault passphrase changed.")
	return subcommands.ExitSuccess
}
