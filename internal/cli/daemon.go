package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"

	"github.com/saugatsn/AutoApplyIPO/internal/notifier"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
	"github.com/saugatsn/AutoApplyIPO/internal/recorder"
	"github.com/saugatsn/AutoApplyIPO/internal/vault"
)

type daemonCmd struct {
	app        *App
	tags       string
	runOnStart bool
}

func (*daemonCmd) Name() string     { return "daemon" }
func (*daemonCmd) Synopsis() string { return "run apply passes on a cron schedule" }
func (*daemonCmd) Usage() string {
	return `autoipo daemon [-tags T1,T2] [-run-on-start]

  Stays resident and runs an apply pass on the configured cron schedule
  (schedule.apply_cron, six-field with seconds). The vault passphrase is
  read once at startup; set AUTOIPO_PASSPHRASE for unattended use.
  Stops on SIGINT or SIGTERM.

`
}

func (c *daemonCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.tags, "tags", "", "comma-separated tag selection; empty or 'all' selects every account")
	f.BoolVar(&c.runOnStart, "run-on-start", false, "run one apply pass immediately before waiting for the schedule")
}

func (c *daemonCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}
	if len(v.Accounts) == 0 {
		return fail(fmt.Errorf("no accounts in vault"))
	}
	if len(orchestrator.SelectAccounts(v.Accounts, splitTags(c.tags))) == 0 {
		return fail(fmt.Errorf("no accounts match tags %q", c.tags))
	}

	rec := c.app.newRecorder()
	defer rec.Close()

	// One pass at a time; a slow portal must not stack concurrent runs.
	var mu sync.Mutex
	pass := func() {
		mu.Lock()
		defer mu.Unlock()
		c.runPass(ctx, v, rec)
	}

	cr := cron.New(cron.WithSeconds())
	if _, err := cr.AddFunc(c.app.Config.Schedule.ApplyCron, pass); err != nil {
		return fail(fmt.Errorf("register apply schedule %q: %w", c.app.Config.Schedule.ApplyCron, err))
	}
	cr.Start()
	defer cr.Stop()
	log.Printf("[INFO] daemon started, apply schedule %q", c.app.Config.Schedule.ApplyCron)

	if c.runOnStart {
		go pass()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping")
	return subcommands.ExitSuccess
}

// runPass executes one full apply run and delivers the summary. Errors are
// logged, never fatal; the daemon keeps its schedule.
func (c *daemonCmd) runPass(ctx context.Context, v *vault.Vault, rec recorder.Recorder) {
	log.Println("[INFO] scheduled apply pass starting")

	l, err := c.app.openLedger()
	if err != nil {
		log.Printf("[ERROR] open ledger: %v", err)
		return
	}
	selected := orchestrator.SelectAccounts(v.Accounts, splitTags(c.tags))

	o := orchestrator.New(c.app.sessionsFor(selected), l, rec, c.app.Config.Apply.Quantity)
	summary, err := o.Run()
	if err != nil {
		log.Printf("[ERROR] apply pass: %v", err)
	}
	if !summary.AppliedAny() && err == nil && !v.Settings.Verbose {
		// Nothing happened; skip the notification noise.
		return
	}
	notifier.Broadcast(ctx, c.app.sinks(v.Settings), notifier.FormatSummary(summary))
}
