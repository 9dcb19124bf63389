package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/notifier"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
)

// splitTags parses a comma-separated tag filter into the transient selection.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

type applyCmd struct {
	app      *App
	tags     string
	quantity int
}

func (*applyCmd) Name() string     { return "apply" }
func (*applyCmd) Synopsis() string { return "apply for all open ordinary-share issues not yet applied" }
func (*applyCmd) Usage() string {
	return `autoipo apply [-tags T1,T2] [-quantity N]

  Discovers open ordinary-share issues, skips those already recorded in the
  ledger, and submits an application for every selected account. The ledger
  is updated once per issue so re-runs never double-apply. A summary is
  delivered to the configured notification sinks at the end.

`
}

func (c *applyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tags, "tags", "", "comma-separated tag selection; empty or 'all' selects every account")
	f.IntVar(&c.quantity, "quantity", 0, "units per application (default from config)")
}

func (c *applyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}
	if len(v.Accounts) == 0 {
		return fail(fmt.Errorf("no accounts in vault; run 'autoipo add' first"))
	}

	selected := orchestrator.SelectAccounts(v.Accounts, splitTags(c.tags))
	if len(selected) == 0 {
		return fail(fmt.Errorf("no accounts match tags %q", c.tags))
	}

	l, err := c.app.openLedger()
	if err != nil {
		return fail(err)
	}
	rec := c.app.newRecorder()
	defer rec.Close()

	quantity := c.quantity
	if quantity <= 0 {
		quantity = c.app.Config.Apply.Quantity
	}

	o := orchestrator.New(c.app.sessionsFor(selected), l, rec, quantity)
	summary, runErr := o.Run()

	sinks := c.app.sinks(v.Settings)
	if !summary.AppliedAny() && !v.Settings.Verbose {
		// Uneventful runs stay on the console unless verbose delivery is on.
		sinks = []notifier.Sink{&notifier.ConsoleSink{W: os.Stdout}}
	}
	notifier.Broadcast(ctx, sinks, notifier.FormatSummary(summary))

	if runErr != nil {
		return fail(runErr)
	}
	return subcommands.ExitSuccess
}
