package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/cloudsign/internal/formatter"
	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/urfave/cli/v3"
)

// Accounts lists the configured accounts without contacting the service.
func (r *Runner) Accounts(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	rows := formatter.AccountRows(models.ParseAccounts(r.config.Accounts.List), r.config.Accounts.FamilyIDs)
	data, err := formatter.ExportAccounts(rows, format)
	if err != nil {
		return fmt.Errorf("failed to export accounts: %w", err)
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
