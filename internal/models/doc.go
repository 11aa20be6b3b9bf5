// Package models defines the domain types shared by the sign-in engine and the cloud client.
//
//   - [Account] : one username/password pair from the configured paired list
//   - [CapacitySnapshot] : personal and family storage totals at a point in time
//   - [SignInOutcome] : result of a single sign-in attempt
//   - [Family] : a family cloud the account belongs to
//
// The [CloudClient] interface is the operation contract of the remote account service.
// [ClientFactory] builds one client per account so sessions never leak between accounts.
package models
