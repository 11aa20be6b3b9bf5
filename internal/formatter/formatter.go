// package formatter exports account listings and run reports to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/shared"
)

// Format is an output format name accepted on the command line.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name. The empty string is [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// AccountRow is one account as shown by listings. The username is always masked.
type AccountRow struct {
	Number   int    `json:"number"`
	Account  string `json:"account"`
	Batch    int    `json:"batch"`
	Leader   bool   `json:"leader"`
	FamilyID string `json:"family_id,omitempty"`
	Complete bool   `json:"complete"`
}

// AccountRows builds listing rows for accounts, resolving each batch's family id.
func AccountRows(accounts []models.Account, familyIDs []string) []AccountRow {
	rows := make([]AccountRow, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, AccountRow{
			Number:   acc.Index + 1,
			Account:  acc.Display(),
			Batch:    acc.Batch() + 1,
			Leader:   acc.IsLeader(),
			FamilyID: models.FamilyIDFor(familyIDs, acc.Batch()),
			Complete: acc.Complete(),
		})
	}
	return rows
}

// AccountsToCSV converts rows to CSV with columns: Number, Account, Batch, Leader, FamilyID, Complete
func AccountsToCSV(rows []AccountRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Number", "Account", "Batch", "Leader", "FamilyID", "Complete"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Number),
			row.Account,
			strconv.Itoa(row.Batch),
			strconv.FormatBool(row.Leader),
			row.FamilyID,
			strconv.FormatBool(row.Complete),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// AccountsToMarkdown converts rows to a Markdown table
func AccountsToMarkdown(rows []AccountRow) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("| # | Account | Batch | Leader | Family ID | Complete |\n")
	buf.WriteString("|---|---------|-------|--------|-----------|----------|\n")
	for _, row := range rows {
		fmt.Fprintf(&buf, "| %d | %s | %d | %s | %s | %s |\n",
			row.Number, row.Account, row.Batch, yesNo(row.Leader), row.FamilyID, yesNo(row.Complete))
	}

	return buf.Bytes(), nil
}

// AccountsToText converts rows to plain text, one account per line
func AccountsToText(rows []AccountRow) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Accounts: %d\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&buf, "%d. %s (batch %d", row.Number, row.Account, row.Batch)
		if row.Leader {
			buf.WriteString(", leader")
		}
		if row.FamilyID != "" {
			fmt.Fprintf(&buf, ", family %s", row.FamilyID)
		}
		if !row.Complete {
			buf.WriteString(", incomplete")
		}
		buf.WriteString(")\n")
	}

	return buf.Bytes(), nil
}

// AccountsToJSON converts rows to indented JSON
func AccountsToJSON(rows []AccountRow) ([]byte, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal accounts: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportAccounts renders rows in the given format
func ExportAccounts(rows []AccountRow, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return AccountsToCSV(rows)
	case FormatMarkdown:
		return AccountsToMarkdown(rows)
	case FormatJSON:
		return AccountsToJSON(rows)
	default:
		return AccountsToText(rows)
	}
}

// ReportToMarkdown renders a report with a heading. Lines keep their trailing hard breaks.
func ReportToMarkdown(title string, lines []string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	buf.WriteString(strings.Join(lines, "  \n"))
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// ReportToText renders a report as plain text under its title
func ReportToText(title string, lines []string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(title + "\n\n")
	for _, line := range lines {
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// WriteReport writes the report to path. Files ending in .md are written as Markdown, anything else as text.
func WriteReport(path, title string, lines []string) error {
	if path == "" {
		return fmt.Errorf("%w: empty report path", shared.ErrMissingArgument)
	}

	render := ReportToText
	if strings.HasSuffix(strings.ToLower(path), ".md") {
		render = ReportToMarkdown
	}

	data, err := render(title, lines)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
