package model

// Settings are the mutable preferences stored inside the encrypted vault
// alongside the accounts. They are passed explicitly into the components
// that need them, never read as ambient state.
type Settings struct {
	TelegramBotToken string `json:"telegram_bot_token,omitempty"`
	TelegramChatID   string `json:"telegram_chat_id,omitempty"`

	// LogLevel suppresses log lines tagged below it; empty means INFO.
	LogLevel string `json:"log_level,omitempty"`

	// Verbose delivers uneventful run summaries to Telegram too.
	Verbose bool `json:"verbose,omitempty"`
}

// TelegramEnabled reports whether both Telegram credentials are configured.
func (s Settings) TelegramEnabled() bool {
	return s.TelegramBotToken != "" && s.TelegramChatID != ""
}
