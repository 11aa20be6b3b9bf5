package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognised by [ApplyEnv].
const (
	EnvAccounts         = "TYYS"
	EnvFamilyIDs        = "FAMILY_ID"
	EnvPrivateThreads   = "PRIVATE_THREADX"
	EnvFamilyThreads    = "FAMILY_THREADX"
	EnvPrivateOnlyFirst = "PRIVATE_ONLY_FIRST"
	EnvTelegramToken    = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"
	EnvWxPusherToken    = "WX_PUSHER_APP_TOKEN"
	EnvWxPusherUID      = "WX_PUSHER_UID"
)

// LoadDotEnv loads variables from the .env file at path into the process environment.
//
// A missing file is not an error. Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment values onto the config. lookup is usually [os.LookupEnv].
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAccounts); ok && strings.TrimSpace(v) != "" {
		c.Accounts.List = strings.Fields(v)
	}
	if v, ok := lookup(EnvFamilyIDs); ok && strings.TrimSpace(v) != "" {
		c.Accounts.FamilyIDs = strings.Fields(v)
	}

	if v, ok := lookup(EnvPrivateThreads); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPrivateThreads, v)
		}
		c.SignIn.PrivateThreads = n
	}
	if v, ok := lookup(EnvFamilyThreads); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvFamilyThreads, v)
		}
		c.SignIn.FamilyThreads = n
	}
	if v, ok := lookup(EnvPrivateOnlyFirst); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvPrivateOnlyFirst, v)
		}
		c.SignIn.PrivateOnlyFirst = b
	}

	for key, dst := range map[string]*string{
		EnvTelegramToken:  &c.Notify.Telegram.BotToken,
		EnvTelegramChatID: &c.Notify.Telegram.ChatID,
		EnvWxPusherToken:  &c.Notify.WxPusher.AppToken,
		EnvWxPusherUID:    &c.Notify.WxPusher.UID,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	return nil
}
