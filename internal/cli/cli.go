// Package cli implements the command surface. Every command is a thin
// wrapper over the core operations: vault, session, ledger, orchestrator.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"golang.org/x/term"

	"github.com/saugatsn/AutoApplyIPO/internal/config"
	"github.com/saugatsn/AutoApplyIPO/internal/ledger"
	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/model"
	"github.com/saugatsn/AutoApplyIPO/internal/notifier"
	"github.com/saugatsn/AutoApplyIPO/internal/orchestrator"
	"github.com/saugatsn/AutoApplyIPO/internal/recorder"
	"github.com/saugatsn/AutoApplyIPO/internal/vault"
)

// App carries the configuration shared by all commands.
type App struct {
	Config *config.Config
}

// Register registers every command on the commander.
func Register(c *subcommands.Commander, cfg *config.Config) {
	app := &App{Config: cfg}

	c.Register(&addCmd{app: app}, "accounts")
	c.Register(&removeCmd{app: app}, "accounts")
	c.Register(&listCmd{app: app}, "accounts")
	c.Register(&tagCmd{app: app}, "accounts")
	c.Register(&passwdCmd{app: app}, "accounts")

	c.Register(&applyCmd{app: app}, "applications")
	c.Register(&syncCmd{app: app}, "applications")
	c.Register(&statusCmd{app: app}, "applications")
	c.Register(&resultCmd{app: app}, "applications")
	c.Register(&appliedCmd{app: app}, "applications")
	c.Register(&daemonCmd{app: app}, "applications")

	c.Register(&portfolioCmd{app: app}, "reporting")
	c.Register(&statsCmd{app: app}, "reporting")

	c.Register(&telegramCmd{app: app}, "settings")
	c.Register(&loglevelCmd{app: app}, "settings")
}

// openVault decrypts the vault, creating a new one (after confirmation) when
// none exists. A wrong passphrase is fatal: the process must not proceed.
func (a *App) openVault() (*vault.Vault, error) {
	path := a.Config.Files.Vault

	if !vault.Exists(path) {
		fmt.Fprintf(os.Stderr, "No vault found at %s.\n", path)
		if !confirm("Create a new vault? (y/n): ") {
			return nil, fmt.Errorf("vault creation declined")
		}
		pass, err := readNewPassphrase()
		if err != nil {
			return nil, err
		}
		return vault.New(path, pass)
	}

	pass, err := readPassphrase("Enter vault passphrase: ")
	if err != nil {
		return nil, err
	}
	v, err := vault.Load(path, pass)
	if err != nil {
		return nil, err
	}
	applyLogLevel(v.Settings.LogLevel)
	return v, nil
}

// openLedger opens the applied-issues ledger from the configured path.
func (a *App) openLedger() (*ledger.Ledger, error) {
	return ledger.Open(a.Config.Files.Ledger)
}

// client builds the portal client from the configuration.
func (a *App) client() *meroshare.Client {
	return meroshare.NewClient(a.Config.Portal.BaseURL, a.Config.Proxy)
}

// newRecorder opens the sqlite recorder, falling back to noop when disabled
// or unavailable.
func (a *App) newRecorder() recorder.Recorder {
	if a.Config.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	r, err := recorder.NewSQLiteRecorder(a.Config.Database.SQLitePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: sqlite recorder unavailable, history disabled: %v\n", err)
		return recorder.NewNoopRecorder()
	}
	return r
}

// sinks builds the notification sinks for the end-of-run summary.
func (a *App) sinks(settings model.Settings) []notifier.Sink {
	out := []notifier.Sink{&notifier.ConsoleSink{W: os.Stdout}}
	if settings.TelegramEnabled() {
		out = append(out, notifier.NewTelegramSink(settings.TelegramBotToken, settings.TelegramChatID, a.Config.Proxy))
	}
	return out
}

// sessionsFor builds one session per selected account.
func (a *App) sessionsFor(accounts []*model.Account) []orchestrator.Session {
	client := a.client()
	sessions := make([]orchestrator.Session, 0, len(accounts))
	for _, acc := range accounts {
		sessions = append(sessions, meroshare.NewSession(client, acc))
	}
	return sessions
}

// readSecret reads one line without echo.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return string(secret), nil
}

// readPassphrase reads the vault passphrase without echo. AUTOIPO_PASSPHRASE
// short-circuits the prompt for scripted and daemon use.
func readPassphrase(prompt string) (string, error) {
	if v := os.Getenv("AUTOIPO_PASSPHRASE"); v != "" {
		return v, nil
	}
	return readSecret(prompt)
}

// readNewPassphrase prompts twice and requires a match.
func readNewPassphrase() (string, error) {
	if v := os.Getenv("AUTOIPO_PASSPHRASE"); v != "" {
		return v, nil
	}
	first, err := readPassphrase("New vault passphrase: ")
	if err != nil {
		return "", err
	}
	second, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passphrases do not match")
	}
	if first == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}
	return first, nil
}

var stdin = bufio.NewReader(os.Stdin)

// readLine prompts and reads one trimmed line from stdin.
func readLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// confirm asks a y/n question.
func confirm(prompt string) bool {
	return strings.EqualFold(readLine(prompt), "y")
}

// fail prints the error and maps it to an exit status.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// newReferenceSession builds a session for the first vault account, used for
// listings that only need any authenticated view.
func newReferenceSession(a *App, v *vault.Vault) *meroshare.Session {
	return meroshare.NewSession(a.client(), &v.Accounts[0])
}

// logoutQuietly ends a session, logging the failure instead of raising it.
func logoutQuietly(s *meroshare.Session) {
	if err := s.Logout(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logout failed: %v\n", err)
	}
}
