package cli

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
)

type syncCmd struct {
	app  *App
	tags string
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "refresh cached portfolio and application data" }
func (*syncCmd) Usage() string {
	return `autoipo sync [-tags T1,T2]

  Refreshes each selected account's cached portfolio, applied issues, and
  allotment outcomes from the portal, then persists the vault.

`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tags, "tags", "", "comma-separated tag selection; empty or 'all' selects every account")
}

func (c *syncCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	failed := 0
	for _, acc := range selected {
		s := meroshare.NewSession(client, acc)
		log.Printf("[INFO] syncing %s", s.AccountName())
		if err := syncAccount(s); err != nil {
			log.Printf("[ERROR] sync %s: %v", s.AccountName(), err)
			failed++
		}
		logoutQuietly(s)
	}

	if err := v.Save(); err != nil {
		return fail(fmt.Errorf("save vault: %w", err))
	}
	if failed > 0 {
		return fail(fmt.Errorf("%d of %d accounts failed to sync", failed, len(selected)))
	}
	fmt.Printf("Synced %d account(s).\n", len(selected))
	return subcommands.ExitSuccess
}

func syncAccount(s *meroshare.Session) error {
	if err := s.FetchPortfolio(); err != nil {
		return fmt.Errorf("portfolio: %w", err)
	}
	if err := s.FetchAppliedIssues(); err != nil {
		return fmt.Errorf("applied issues: %w", err)
	}
	if err := s.FetchAppliedIssuesStatus(); err != nil {
		return fmt.Errorf("issue statuses: %w", err)
	}
	return nil
}
