package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/subcommands"
)

// logLevels orders the recognised levels from chattiest to quietest. The
// stdlib logger carries the level as a line tag, so filtering happens on the
// output writer rather than at the call sites.
var logLevels = []string{"DEBUG", "INFO", "WARN", "ERROR"}

func logLevelRank(level string) (int, bool) {
	for i, l := range logLevels {
		if l == level {
			return i, true
		}
	}
	return 0, false
}

// levelFilter drops log lines whose tag ranks below the minimum level.
// Untagged lines and [FATAL] always pass.
type levelFilter struct {
	min int
	out io.Writer
}

func (f *levelFilter) Write(p []byte) (int, error) {
	for i, l := range logLevels {
		if i >= f.min {
			break
		}
		if bytes.Contains(p, []byte("["+l+"]")) {
			return len(p), nil
		}
	}
	return f.out.Write(p)
}

// applyLogLevel installs a level filter over the current log output. An empty
// or unknown level leaves the logger untouched (everything at INFO and up).
func applyLogLevel(level string) {
	rank, ok := logLevelRank(strings.ToUpper(level))
	if !ok || rank == 0 {
		return
	}
	log.SetOutput(&levelFilter{min: rank, out: log.Writer()})
}

type loglevelCmd struct {
	app *App
}

func (*loglevelCmd) Name() string     { return "loglevel" }
func (*loglevelCmd) Synopsis() string { return "show or set the persisted log level" }
func (*loglevelCmd) Usage() string {
	return `autoipo loglevel [DEBUG|INFO|WARN|ERROR]

  Without an argument, shows the current level. With one, persists it in the
  vault; log lines tagged below the level are suppressed on every later run.

`
}

func (*loglevelCmd) SetFlags(*flag.FlagSet) {}

func (c *loglevelCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}

	if f.NArg() == 0 {
		level := v.Settings.LogLevel
		if level == "" {
			level = "INFO"
		}
		fmt.Printf("Log level: %s\n", level)
		return subcommands.ExitSuccess
	}

	level := strings.ToUpper(f.Arg(0))
	if _, ok := logLevelRank(level); !ok {
		return fail(fmt.Errorf("unknown log level %q; want one of %s", f.Arg(0), strings.Join(logLevels, ", ")))
	}
	v.Settings.LogLevel = level
	if err := v.Save(); err != nil {
		return fail(fmt.Errorf("save vault: %w", err))
	}
	applyLogLevel(level)
	fmt.Printf("Log level set to %s.\n", level)
	return subcommands.ExitSuccess
}
