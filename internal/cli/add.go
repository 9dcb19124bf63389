package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/google/subcommands"

	"github.com/saugatsn/AutoApplyIPO/internal/capital"
	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

// minPortalPasswordLen guards against truncated pastes of portal passwords.
const minPortalPasswordLen = 8

type addCmd struct {
	app *App

	dmat      string
	password  string
	crn       string
	pin       int
	capitalID int
	tag       string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a brokerage account to the vault" }
func (*addCmd) Usage() string {
	return `autoipo add [-dmat D -password P -crn C -pin N] [-capital ID] [-tag T]

  Adds one account. Missing credentials are prompted interactively; the
  capital id is resolved from the DMAT's depository code, refreshing the
  cached capital list once on a miss.

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dmat, "dmat", "", "16-digit DMAT number")
	f.StringVar(&c.password, "password", "", "portal password (prompted when omitted)")
	f.StringVar(&c.crn, "crn", "", "CRN number")
	f.IntVar(&c.pin, "pin", 0, "transaction PIN")
	f.IntVar(&c.capitalID, "capital", 0, "capital id override (skips lookup)")
	f.StringVar(&c.tag, "tag", "", "optional grouping tag")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}

	if c.dmat == "" {
		c.dmat = readLine("Enter DMAT: ")
	}
	if c.password == "" {
		pass, err := readSecret("Enter portal password: ")
		if err != nil {
			return fail(err)
		}
		c.password = pass
	}
	if len(c.password) < minPortalPasswordLen {
		return fail(fmt.Errorf("password too short (min %d characters)", minPortalPasswordLen))
	}
	if c.crn == "" {
		c.crn = readLine("Enter CRN number: ")
	}
	if c.pin == 0 {
		pin, err := strconv.Atoi(readLine("Enter transaction PIN: "))
		if err != nil {
			return fail(fmt.Errorf("invalid PIN: %w", err))
		}
		c.pin = pin
	}

	account := model.Account{
		Dmat:     c.dmat,
		Password: c.password,
		PIN:      c.pin,
		CRN:      c.crn,
		Tag:      c.tag,
	}

	client := c.app.client()
	if c.capitalID != 0 {
		account.CapitalID = c.capitalID
	} else {
		capitals := capital.NewMap(v.Capitals, client)
		id, err := capitals.ResolveOrRefresh(account.DepositoryCode())
		var lookupErr *capital.LookupError
		switch {
		case err == nil:
			account.CapitalID = id
		case errors.As(err, &lookupErr):
			fmt.Println("Could not find capital id for the given DMAT.")
			manual, convErr := strconv.Atoi(readLine("Enter capital id manually: "))
			if convErr != nil {
				return fail(fmt.Errorf("invalid capital id: %w", convErr))
			}
			account.CapitalID = manual
		default:
			return fail(err)
		}
		// Persist whatever the refresh brought in.
		if err := v.Save(); err != nil {
			return fail(err)
		}
	}

	session := meroshare.NewSession(client, &account)
	if err := session.FetchDetails(); err != nil {
		fmt.Printf("Failed to obtain details for account: %v\n", err)
	} else {
		if err := session.Logout(); err != nil {
			fmt.Printf("Failed to logout: %v\n", err)
		}
	}

	if err := v.AddAccount(account); err != nil {
		return fail(err)
	}
	fmt.Printf("Account %s added.\n", account.Name)
	return subcommands.ExitSuccess
}
