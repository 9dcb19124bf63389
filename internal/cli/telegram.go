package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type telegramCmd struct {
	app *App
}

func (*telegramCmd) Name() string     { return "telegram" }
func (*telegramCmd) Synopsis() string { return "enable or disable Telegram summary delivery" }
func (*telegramCmd) Usage() string {
	return `autoipo telegram <enable|disable|verbose|quiet|status>

  enable   store a bot token and chat id; apply summaries are then also
           sent to that chat
  disable  stop sending summaries to Telegram (credentials are removed)
  verbose  also deliver summaries of runs where nothing was applied
  quiet    deliver summaries only when at least one application was made
  status   show the current settings

`
}

func (*telegramCmd) SetFlags(*flag.FlagSet) {}

func (c *telegramCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	action := f.Arg(0)
	if action == "" {
		action = "status"
	}

	v, err := c.app.openVault()
	if err != nil {
		return fail(err)
	}

	switch action {
	case "enable":
		token := readLine("Bot token: ")
		chatID := readLine("Chat id: ")
		if token == "" || chatID == "" {
			return fail(fmt.Errorf("bot token and chat id are both required"))
		}
		v.Settings.TelegramBotToken = token
		v.Settings.TelegramChatID = chatID
		if err := v.Save(); err != nil {
			return fail(fmt.Errorf("save vault: %w", err))
		}
		fmt.Println("Telegram notifications enabled.")
	case "disable":
		v.Settings.TelegramBotToken = ""
		v.Settings.TelegramChatID = ""
		if err := v.Save(); err != nil {
			return fail(fmt.Errorf("save vault: %w", err))
		}
		fmt.Println("Telegram notifications disabled.")
	case "verbose", "quiet":
		v.Settings.Verbose = action == "verbose"
		if err := v.Save(); err != nil {
			return fail(fmt.Errorf("save vault: %w", err))
		}
		fmt.Printf("Delivery set to %s.\n", action)
	case "status":
		if v.Settings.TelegramEnabled() {
			mode := "quiet"
			if v.Settings.Verbose {
				mode = "verbose"
			}
			fmt.Printf("Telegram notifications are enabled for chat %s (%s delivery).\n", v.Settings.TelegramChatID, mode)
		} else {
			fmt.Println("Telegram notifications are disabled.")
		}
	default:
		return fail(fmt.Errorf("unknown action %q; want enable, disable, verbose, quiet, or status", action))
	}
	return subcommands.ExitSuccess
}
