package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/google/subcommands"
)

type removeCmd struct {
	app *App
	id  int
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove an account from the vault" }
func (*removeCmd) Usage() string {
	return "autoipo remove [-id N]\n\n  Removes the account with the given 1-based id (prompted when omitted).\n\n"
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "1-based account id from 'list'")
}

func (c *removeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}

	if c.id == 0 {
		listAccounts(v)
		id, convErr := strconv.Atoi(readLine("Choose an account id: "))
		if convErr != nil {
			return fail(fmt.Errorf("invalid account id: %w", convErr))
		}
		c.id = id
	}

	if err := v.RemoveAccount(c.id - 1); err != nil {
		return fail(err)
	}
	fmt.Println("Account removed.")
	return subcommands.ExitSuccess
}
