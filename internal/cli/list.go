package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/vault"
)

type listCmd struct {
	app  *App
	full bool
	what string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list accounts, capitals or application reports" }
func (*listCmd) Usage() string {
	return `autoipo list [-full] [accounts|capitals|results]

  Lists vault accounts (default), the cached capital map, or the reference
  account's application reports. -full includes passwords and PINs after an
  explicit confirmation.

`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.full, "full", false, "include password and PIN columns (requires confirmation)")
}

func (c *listCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	c.what = "accounts"
	if f.NArg() > 0 {
		c.what = f.Arg(0)
	}

	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}

	switch c.what {
	case "accounts":
		if c.full {
			fmt.Println("WARNING: this will display the password and PIN of your accounts!")
			if !confirm("Do you want to continue? (y/n): ") {
				return subcommands.ExitSuccess
			}
			listAccountsFull(v)
			return subcommands.ExitSuccess
		}
		listAccounts(v)
	case "capitals":
		listCapitals(v)
	case "results":
		return c.listResults(v)
	default:
		fmt.Fprintf(os.Stderr, "unknown listing %q\n", c.what)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

func listAccounts(v *vault.Vault) {
	rows := make([][]string, 0, len(v.Accounts))
	for i, a := range v.Accounts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), a.Name, a.Dmat, a.AccountNumber, a.CRN, a.Tag,
		})
	}
	printTable(os.Stdout, []string{"ID", "Name", "DMAT", "Account", "CRN", "Tag"}, rows)
}

func listAccountsFull(v *vault.Vault) {
	rows := make([][]string, 0, len(v.Accounts))
	for i, a := range v.Accounts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), a.Name, a.Dmat, a.AccountNumber, a.CRN, a.Password, strconv.Itoa(a.PIN),
		})
	}
	printTable(os.Stdout, []string{"ID", "Name", "DMAT", "Account", "CRN", "Password", "PIN"}, rows)
}

func listCapitals(v *vault.Vault) {
	codes := make([]string, 0, len(v.Capitals))
	for code := range v.Capitals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, []string{code, strconv.Itoa(v.Capitals[code])})
	}
	printTable(os.Stdout, []string{"DPID", "ID"}, rows)
}

func (c *listCmd) listResults(v *vault.Vault) subcommands.ExitStatus {
	if len(v.Accounts) == 0 {
		return fail(fmt.Errorf("no accounts in vault"))
	}
	s := newReferenceSession(c.app, v)
	defer logoutQuietly(s)
	reports, err := s.FetchApplicationReports()
	if err != nil {
		return fail(err)
	}

	rows := make([][]string, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		rows = append(rows, []string{strconv.Itoa(r.CompanyShareID), r.Scrip, r.CompanyName})
	}
	printTable(os.Stdout, []string{"ID", "Scrip", "Name"}, rows)
	return subcommands.ExitSuccess
}
