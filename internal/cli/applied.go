package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type appliedCmd struct {
	app   *App
	clear bool
}

func (*appliedCmd) Name() string     { return "applied" }
func (*appliedCmd) Synopsis() string { return "show or clear the ledger of already-applied issues" }
func (*appliedCmd) Usage() string {
	return `autoipo applied [-clear]

  Shows the issues already applied for, as recorded by 'autoipo apply'.
  With -clear, wipes the ledger after confirmation; apply will then treat
  every open issue as new.

`
}

func (c *appliedCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "clear the ledger after confirmation")
}

func (c *appliedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := c.app.openLedger()
	if err != nil {
		return fail(err)
	}

	if c.clear {
		ok := confirm("Clear the applied-issues ledger? Re-running apply may re-submit applications. [y/N]: ")
		if !ok {
			fmt.Println("Aborted.")
			return subcommands.ExitSuccess
		}
		if err := l.Clear(true); err != nil {
			return fail(err)
		}
		fmt.Println("Ledger cleared.")
		return subcommands.ExitSuccess
	}

	records := l.All()
	if len(records) == 0 {
		fmt.Println("No applications recorded yet.")
		return subcommands.ExitSuccess
	}
	var rows [][]string
	for _, r := range records {
		rows = append(rows, []string{
			r.Scrip,
			r.Name,
			r.CloseDate,
			r.AppliedDate,
			fmt.Sprintf("%d", r.SuccessCount),
			fmt.Sprintf("%d", r.FailedCount),
		})
	}
	printTable(os.Stdout, []string{"Scrip", "Company", "Close Date", "Applied", "Success", "Failed"}, rows)
	return subcommands.ExitSuccess
}
