package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return nil
}

// ConfigShow prints the resolved configuration (file, .env and environment) with credentials masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	masked := maskConfig(*r.config)
	if cmd.Bool("json") {
		return r.writeJSON(masked, true)
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return r.writePlain("%s", b.String())
}

// maskConfig returns a copy of c that is safe to print.
func maskConfig(c shared.Config) shared.Config {
	list := make([]string, len(c.Accounts.List))
	for i, v := range c.Accounts.List {
		switch {
		case i%2 == 0:
			list[i] = models.Account{Username: v}.Display()
		case v != "":
			list[i] = strings.Repeat(string(shared.MaskChar), 6)
		}
	}
	c.Accounts.List = list
	c.Accounts.FamilyIDs = append([]string(nil), c.Accounts.FamilyIDs...)

	c.Notify.Telegram.BotToken = maskSecret(c.Notify.Telegram.BotToken)
	c.Notify.Telegram.ChatID = maskSecret(c.Notify.Telegram.ChatID)
	c.Notify.WxPusher.AppToken = maskSecret(c.Notify.WxPusher.AppToken)
	c.Notify.WxPusher.UID = maskSecret(c.Notify.WxPusher.UID)
	return c
}

// maskSecret keeps the last four runes of s.
func maskSecret(s string) string {
	n := len([]rune(s))
	if n <= 4 {
		return shared.Mask(s, 0, n)
	}
	return shared.Mask(s, 0, n-4)
}
