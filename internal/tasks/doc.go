// Package tasks runs the daily sign-in over a list of accounts and records what happened in a [Report].
//
// # Core Operations
//
//  1. [SignInTask.Run] : Sign-in for one logged-in account
//     - Personal cloud: concurrent attempts, skipped for non-leaders when only the first account signs personally
//     - Family cloud: resolves the target family, then concurrent (or a single sequential) attempts
//     - Returns report lines with the aggregated bonus per category
//
//  2. [BatchRunner.Run] : Sequential pass over all accounts
//     - Accounts are grouped in batches of [models.BatchSize] sharing one family id
//     - The first account of a batch (the leader) captures a capacity baseline
//     - When a batch closes the leader logs in again and the capacity gained by the batch is reported
//
// # Failure Containment
//
// Login, capacity and task failures are logged and recorded in the report, then the runner moves on to the next
// account. Login and the whole sign-in task are retried with their own [retry.Policy].
//
// # Report
//
// [Report] is append-only. Every line is also written to the logger. [Report.Flush] seals the report and hands the
// body to the notifier exactly once, so it is safe to defer.
package tasks
