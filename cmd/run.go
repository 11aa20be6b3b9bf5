package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cloudsign/internal/formatter"
	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/notify"
	"github.com/desertthunder/cloudsign/internal/shared"
	"github.com/desertthunder/cloudsign/internal/tasks"
	"github.com/desertthunder/cloudsign/internal/ui"
	"github.com/urfave/cli/v3"
)

// Run signs in every configured account, pushes the report and prints it.
//
// Per-account and per-channel failures are logged and reported, never returned.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "run_id", shared.GenerateID())

	accounts := models.ParseAccounts(r.config.Accounts.List)
	if len(accounts) == 0 {
		logger.Warn("no accounts configured", "env", shared.EnvAccounts)
	}
	logger.Info("sign-in started", "accounts", len(accounts), "family_ids", len(r.config.Accounts.FamilyIDs))

	report := tasks.NewReport(logger)
	summary, results := r.execute(ctx, logger, accounts, report, !cmd.Bool("no-notify"))

	if err := r.writePlain("%s\n%s\n", ui.RenderReport(r.config.Title, report.Lines()), ui.RenderSummary(summary)); err != nil {
		return err
	}
	if len(results) > 0 {
		if err := r.writePlain("%s", ui.RenderResults(results)); err != nil {
			return err
		}
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteReport(path, r.config.Title, report.Lines()); err != nil {
			logger.Error("failed to save report", "path", path, "error", err)
		} else {
			logger.Info("report saved", "path", path)
		}
	}
	return nil
}

// execute processes all accounts. The report is flushed to the channels on every exit path, panics included,
// and the push is not cut short by an interrupted run.
func (r *Runner) execute(ctx context.Context, logger *log.Logger, accounts []models.Account, report *tasks.Report, push bool) (summary tasks.Summary, results []notify.Result) {
	dispatcher := r.dispatcher(logger)

	defer report.Flush(context.WithoutCancel(ctx), func(ctx context.Context, body string) {
		if !push {
			logger.Info("notifications disabled, report not pushed")
			return
		}
		results = dispatcher.Dispatch(ctx, r.config.Title, body)
	})

	summary = r.batchRunner(logger).Run(ctx, accounts, report)
	logger.Info("sign-in finished", "report_lines", report.Len(),
		"personal_bonus", fmt.Sprintf("%dM", summary.PersonalBonus), "family_bonus", fmt.Sprintf("%dM", summary.FamilyBonus))
	return summary, results
}
