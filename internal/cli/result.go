package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
)

type resultCmd struct {
	app   *App
	scrip string
	tags  string
}

func (*resultCmd) Name() string     { return "result" }
func (*resultCmd) Synopsis() string { return "check allotment results of one issue across accounts" }
func (*resultCmd) Usage() string {
	return `autoipo result -scrip SYMBOL [-tags T1,T2]

  Looks the issue up in each selected account's application reports and
  fetches its current allotment outcome from the portal.

`
}

func (c *resultCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.scrip, "scrip", "", "scrip symbol of the issue, e.g. NIFRA")
	f.StringVar(&c.tags, "tags", "", "comma-separated tag selection; empty or 'all' selects every account")
}

func (c *resultCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.scrip == "" {
		c.scrip = readLine("Scrip symbol: ")
	}
	if c.scrip == "" {
		return fail(fmt.Errorf("scrip symbol is required"))
	}
	scrip := strings.ToUpper(strings.TrimSpace(c.scrip))

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
	var rows [][]string
	for _, acc := range selected {
		s := meroshare.NewSession(client, acc)
		row, err := allotmentRow(s, scrip)
		logoutQuietly(s)
		if err != nil {
			return fail(fmt.Errorf("result for %s: %w", s.AccountName(), err))
		}
		rows = append(rows, row)
	}
	printTable(os.Stdout, []string{"Account", "Status", "Alloted", "Units"}, rows)
	return subcommands.ExitSuccess
}

// allotmentRow resolves one account's outcome for the scrip. Accounts that
// never applied, or whose form detail is gone, report a dash instead of
// failing the whole command.
func allotmentRow(s *meroshare.Session, scrip string) ([]string, error) {
	reports, err := s.FetchApplicationReports()
	if err != nil {
		return nil, err
	}
	for _, report := range reports {
		if !strings.EqualFold(report.Scrip, scrip) {
			continue
		}
		status, err := s.FetchApplicationStatus(report.FormID)
		if errors.Is(err, meroshare.ErrFormNotFound) {
			return []string{s.AccountName(), "N/A", "-", "-"}, nil
		}
		if err != nil {
			return nil, err
		}
		alloted := "No"
		units := "-"
		if status.Alloted() {
			alloted = "Yes"
			units = fmt.Sprintf("%.0f", status.ReceivedKitta)
		}
		return []string{s.AccountName(), status.StatusName, alloted, units}, nil
	}
	return []string{s.AccountName(), "not applied", "-", "-"}, nil
}
