// Package ui renders run output for the terminal with lipgloss styles.
//
// Report lines are classified by [Classify] (account header, bonus, capacity, failure) and colored accordingly.
// Rendering never changes line text, so stripping styles yields the pushed report.
package ui
