package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/google/subcommands"
)

type tagCmd struct {
	app *App
	id  int
	tag string
}

func (*tagCmd) Name() string     { return "tag" }
func (*tagCmd) Synopsis() string { return "tag an account to group it for selective operations" }
func (*tagCmd) Usage() string {
	return `autoipo tag [-id N] [-tag T]

  Sets the grouping tag of one account. An empty tag or the reserved tag
  "all" clears it.

`
}

func (c *tagCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "1-based account id from 'list'")
	f.StringVar(&c.tag, "tag", "", "tag value; empty clears")
}

func (c *tagCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if c.id < 1 || c.id > len(v.Accounts) {
		return fail(fmt.Errorf("account id %d out of range", c.id))
	}
	account := &v.Accounts[c.id-1]

	if c.tag == "" && f.NFlag() < 2 {
		c.tag = readLine(fmt.Sprintf("Set tag for account %s: ", account.Name))
	}
	// "all" is the reserved selector for the unfiltered set.
	if c.tag == "all" {
		fmt.Printf("Invalid tag %q. Clearing tag.\n", c.tag)
		c.tag = ""
	}

	account.Tag = c.tag
	if err := v.Save(); err != nil {
		return fail(err)
	}
	if c.tag == "" {
		fmt.Printf("Tag cleared for %s.\n", account.Name)
	} else {
		fmt.Printf("Tagged %s as %q.\n", account.Name, c.tag)
	}
	return subcommands.ExitSuccess
}
