package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
)

type statusCmd struct {
	app  *App
	tags string
}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "show application form status per account" }
func (*statusCmd) Usage() string {
	return `autoipo status [-tags T1,T2]

  Lists every submitted application form of the selected accounts along with
  the portal's current status for it. Forms the portal no longer reports a
  detail for are shown as N/A.

`
}

func (c *statusCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tags, "tags", "", "comma-separated tag selection; empty or 'all' selects every account")
}

func (c *statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}
	if len(v.Accounts) == 0 {
		return fail(fmt.Errorf("no accounts in vault"))
	}
	selected := orchestrator.SelectAccounts(v.Accounts, splitTags(c.tags))
	if len(selected) == 0 {
		return fail(fmt.Errorf("no accounts match tags %q", c.tags))
	}

	client := c.app.client()
	for _, acc := range selected {
		s := meroshare.NewSession(client, acc)
		fmt.Printf("\n%s\n", s.AccountName())

		reports, err := s.FetchApplicationReports()
		if err != nil {
			logoutQuietly(s)
			return fail(fmt.Errorf("fetch reports for %s: %w", s.AccountName(), err))
		}

		var rows [][]string
		for _, report := range reports {
			status, err := s.FetchApplicationStatus(report.FormID)
			switch {
			case errors.Is(err, meroshare.ErrFormNotFound):
				rows = append(rows, []string{report.CompanyName, report.Scrip, "N/A", ""})
			case err != nil:
				logoutQuietly(s)
				return fail(fmt.Errorf("status for %s form %d: %w", report.Scrip, report.FormID, err))
			default:
				rows = append(rows, []string{report.CompanyName, report.Scrip, status.StatusName, status.ReasonOrRemark})
			}
		}
		logoutQuietly(s)

		if len(rows) == 0 {
			fmt.Println("  no applications found")
			continue
		}
		printTable(os.Stdout, []string{"COMPANY", "SCRIP", "STATUS", "REMARKS"}, rows)
	}
	return subcommands.ExitSuccess
}
