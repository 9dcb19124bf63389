package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
)

type statsCmd struct {
	app  *App
	tags string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show per-account allotment statistics" }
func (*statsCmd) Usage() string {
	return `autoipo stats [-tags T1,T2]

  Summarises the cached application history of each selected account:
  applications made, rejections, allotments, allotment rate, and the units
  and amounts involved. Run 'autoipo sync' first to refresh the cache.

`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tags, "tags", "", "comma-separated tag selection; empty or 'all' selects every account")
}

// accountStats aggregates one account's cached issue history.
type accountStats struct {
	applied       int
	rejected      int
	alloted       int
	appliedUnits  float64
	allotedUnits  float64
	appliedAmount float64
}

func tally(issues []model.IssueStatus) accountStats {
	var s accountStats
	for _, issue := range issues {
		s.applied++
		s.appliedUnits += issue.AppliedQuantity
		s.appliedAmount += issue.AppliedAmount
		if issue.Status == model.StatusBlockFailed {
			s.rejected++
			continue
		}
		if issue.Alloted != nil && *issue.Alloted {
			s.alloted++
			s.allotedUnits += issue.AllotedQuantity
		}
	}
	return s
}

func (s accountStats) row(name string) []string {
	rate := "-"
	if s.applied > 0 {
		rate = fmt.Sprintf("%.1f%%", 100*float64(s.alloted)/float64(s.applied))
	}
	return []string{
		name,
		fmt.Sprintf("%d", s.applied),
		fmt.Sprintf("%d", s.rejected),
		fmt.Sprintf("%d", s.alloted),
		rate,
		fmt.Sprintf("%.0f", s.appliedUnits),
		fmt.Sprintf("%.0f", s.allotedUnits),
		fmt.Sprintf("%.2f", s.appliedAmount),
	}
}

func (s *accountStats) add(other accountStats) {
	s.applied += other.applied
	s.rejected += other.rejected
	s.alloted += other.alloted
	s.appliedUnits += other.appliedUnits
	s.allotedUnits += other.allotedUnits
	s.appliedAmount += other.appliedAmount
}

func (c *statsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var rows [][]string
	var total accountStats
	for _, acc := range selected {
		s := tally(acc.Issues)
		name := acc.Name
		if name == "" {
			name = acc.Dmat
		}
		rows = append(rows, s.row(name))
		total.add(s)
	}
	if len(selected) > 1 {
		rows = append(rows, total.row("TOTAL"))
	}
	printTable(os.Stdout, []string{"Account", "Applied", "Rejected", "Alloted", "Rate", "Units", "Alloted Units", "Amount"}, rows)
	return subcommands.ExitSuccess
}
