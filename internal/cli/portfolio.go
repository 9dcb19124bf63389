package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

type portfolioCmd struct {
	app *App
	id  int
	all bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "show an account's cached portfolio" }
func (*portfolioCmd) Usage() string {
	return `autoipo portfolio [-id N | -all]

  Prints the cached portfolio of one account (by its 1-based list position),
  or the merged portfolio of every account with -all. Run 'autoipo sync'
  first to refresh the cache.

`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.id, "id", 0, "1-based account id as shown by 'autoipo list'")
	f.BoolVar(&c.all, "all", false, "merge every account's portfolio into one view")
}

func (c *portfolioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}
	if len(v.Accounts) == 0 {
		return fail(fmt.Errorf("no accounts in vault"))
	}

	var entries []model.PortfolioEntry
	switch {
	case c.all:
		portfolios := make([][]model.PortfolioEntry, 0, len(v.Accounts))
		for _, acc := range v.Accounts {
			portfolios = append(portfolios, acc.Portfolio)
		}
		entries = model.MergePortfolios(portfolios...)
	case c.id >= 1 && c.id <= len(v.Accounts):
		entries = v.Accounts[c.id-1].Portfolio
	default:
		return fail(fmt.Errorf("account id must be between 1 and %d, or use -all", len(v.Accounts)))
	}

	if len(entries) == 0 {
		fmt.Println("No portfolio data cached. Run 'autoipo sync' first.")
		return subcommands.ExitSuccess
	}

	var rows [][]string
	var units, lastValue, prevValue float64
	for _, e := range entries {
		rows = append(rows, []string{
			e.Scrip,
			fmt.Sprintf("%.0f", e.CurrentBalance),
			fmt.Sprintf("%.2f", e.LastTransactionPrice),
			fmt.Sprintf("%.2f", e.ValueAsOfLastTransactionPrice),
			fmt.Sprintf("%.2f", e.ValueAsOfPreviousClosingPrice),
		})
		units += e.CurrentBalance
		lastValue += e.ValueAsOfLastTransactionPrice
		prevValue += e.ValueAsOfPreviousClosingPrice
	}
	rows = append(rows, []string{
		"TOTAL",
		fmt.Sprintf("%.0f", units),
		"",
		fmt.Sprintf("%.2f", lastValue),
		fmt.Sprintf("%.2f", prevValue),
	})
	printTable(os.Stdout, []string{"Scrip", "Units", "LTP", "Value (LTP)", "Value (Prev Close)"}, rows)
	fmt.Printf("\nChange since previous close: %+.2f\n", lastValue-prevValue)
	return subcommands.ExitSuccess
}
