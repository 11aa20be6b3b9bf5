// Package notify pushes the run report to Telegram and WxPusher.
//
// Each channel is delivered independently under the push [retry.Policy]. A failing channel never blocks or
// fails the other one, and [Dispatcher.Dispatch] itself never returns an error.
package notify

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cloudsign/internal/retry"
	"github.com/desertthunder/cloudsign/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Channel delivers a titled message to one notification target.
type Channel interface {
	Name() string
	// Enabled reports whether the channel has credentials. Disabled channels are skipped without an attempt.
	Enabled() bool
	Send(ctx context.Context, title, body string) error
}

// Result is the outcome of one channel.
type Result struct {
	Channel string
	Skipped bool
	Err     error
}

// Delivered reports whether the message reached the channel.
func (r Result) Delivered() bool {
	return !r.Skipped && r.Err == nil
}

// Dispatcher fans a message out to every enabled channel.
type Dispatcher struct {
	channels []Channel
	policy   retry.Policy
	logger   *log.Logger
}

// NewDispatcher creates a dispatcher. policy applies to each channel separately.
func NewDispatcher(policy retry.Policy, logger *log.Logger, channels ...Channel) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{channels: channels, policy: policy, logger: logger}
}

// NewFromConfig builds a dispatcher with the Telegram and WxPusher channels. transport may be nil.
func NewFromConfig(c shared.NotifyConfig, policy retry.Policy, transport http.RoundTripper, logger *log.Logger) *Dispatcher {
	return NewDispatcher(policy, logger,
		NewTelegram(c.Telegram, transport),
		NewWxPusher(c.WxPusher, transport),
	)
}

// Channels returns the configured channels.
func (d *Dispatcher) Channels() []Channel {
	return d.channels
}

// Dispatch sends title and body to all enabled channels concurrently and waits for every one of them.
// Results are in channel order.
func (d *Dispatcher) Dispatch(ctx context.Context, title, body string) []Result {
	results := make([]Result, len(d.channels))

	var g errgroup.Group
	for i, ch := range d.channels {
		results[i].Channel = ch.Name()
		if !ch.Enabled() {
			results[i].Skipped = true
			continue
		}

		logger := shared.WithLogger(d.logger, "channel", ch.Name())
		policy := d.policy
		policy.Name = "push " + ch.Name()
		policy.Logger = logger

		g.Go(func() error {
			results[i].Err = retry.Run(ctx, policy, func(ctx context.Context) error {
				return ch.Send(ctx, title, body)
			})
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		switch {
		case r.Skipped:
			d.logger.Debug("notification channel not configured", "channel", r.Channel)
		case r.Err != nil:
			d.logger.Error("notification failed", "channel", r.Channel, "error", r.Err)
		default:
			d.logger.Info("notification sent", "channel", r.Channel)
		}
	}
	return results
}

// Failed joins the errors of channels that were attempted and not delivered. It is nil when none failed.
func Failed(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}
