package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cloudsign/internal/notify"
	"github.com/desertthunder/cloudsign/internal/shared"
	"github.com/desertthunder/cloudsign/internal/ui"
	"github.com/urfave/cli/v3"
)

// NotifyTest pushes a test message through every configured channel.
func (r *Runner) NotifyTest(ctx context.Context, cmd *cli.Command) error {
	if !r.config.Notify.Telegram.Enabled() && !r.config.Notify.WxPusher.Enabled() {
		return fmt.Errorf("%w: set %s/%s or %s/%s", shared.ErrMissingConfig,
			shared.EnvTelegramToken, shared.EnvTelegramChatID, shared.EnvWxPusherToken, shared.EnvWxPusherUID)
	}

	logger := shared.WithLogger(r.logger, "run_id", shared.GenerateID())
	results := r.dispatcher(logger).Dispatch(ctx, r.config.Title, cmd.String("message"))

	if err := r.writePlain("%s", ui.RenderResults(results)); err != nil {
		return err
	}
	if err := notify.Failed(results); err != nil {
		return fmt.Errorf("notification failed: %w", err)
	}
	return nil
}
