// package models defines the data model for the cloud sign-in runner
package models

import (
	"context"

	"github.com/desertthunder/cloudsign/internal/shared"
)

// BatchSize is the number of consecutive accounts sharing one family id and one batch leader.
const BatchSize = 20

// Account is a single username/password pair.
type Account struct {
	Index    int // position of the pair in the account list, starting at 0
	Username string
	Password string
}

// Complete reports whether both credentials are present.
func (a Account) Complete() bool {
	return a.Username != "" && a.Password != ""
}

// Display returns the username with runes [3,7) masked.
func (a Account) Display() string {
	return shared.Mask(a.Username, 3, 7)
}

// Batch returns the batch number of the account.
func (a Account) Batch() int {
	return a.Index / BatchSize
}

// IsLeader reports whether the account is the first of its batch.
func (a Account) IsLeader() bool {
	return a.Index%BatchSize == 0
}

// ClosesBatch reports whether the account is the last slot of its batch.
func (a Account) ClosesBatch() bool {
	return a.Index%BatchSize == BatchSize-1
}

// ParseAccounts splits a flat list into pairs: even entries are usernames, odd entries passwords.
//
// A trailing username without a password yields an incomplete [Account].
func ParseAccounts(list []string) []Account {
	accounts := make([]Account, 0, (len(list)+1)/2)
	for i := 0; i < len(list); i += 2 {
		acc := Account{Index: i / 2, Username: list[i]}
		if i+1 < len(list) {
			acc.Password = list[i+1]
		}
		accounts = append(accounts, acc)
	}
	return accounts
}

// FamilyIDFor returns the family id configured for a batch, or "" when none is configured.
func FamilyIDFor(familyIDs []string, batch int) string {
	if batch < 0 || batch >= len(familyIDs) {
		return ""
	}
	return familyIDs[batch]
}

// CapacitySnapshot holds total storage sizes in bytes.
type CapacitySnapshot struct {
	PersonalTotal int64
	FamilyTotal   int64
}

// Sub returns the per-pool difference s - base.
func (s CapacitySnapshot) Sub(base CapacitySnapshot) CapacitySnapshot {
	return CapacitySnapshot{
		PersonalTotal: s.PersonalTotal - base.PersonalTotal,
		FamilyTotal:   s.FamilyTotal - base.FamilyTotal,
	}
}

// SignInOutcome is the result of one sign-in attempt. Bonus is in MiB as reported by the service.
type SignInOutcome struct {
	Bonus         int64
	AlreadySigned bool
}

// Aggregate sums the bonuses of attempts that were not already signed. The result is 0 when nothing was gained.
func Aggregate(outcomes []SignInOutcome) int64 {
	var total int64
	for _, o := range outcomes {
		if o.AlreadySigned {
			continue
		}
		total += o.Bonus
	}
	return total
}

// Family is a family cloud the account is a member of.
type Family struct {
	ID   string
	Name string
}

// SelectFamily returns the family matching id, falling back to the first entry.
// ok is false when families is empty.
func SelectFamily(families []Family, id string) (Family, bool) {
	if len(families) == 0 {
		return Family{}, false
	}
	for _, f := range families {
		if f.ID == id {
			return f, true
		}
	}
	return families[0], true
}

// CloudClient is the operation contract of the remote account service for one account.
type CloudClient interface {
	// Login establishes a session with the account credentials.
	Login(ctx context.Context) error

	// UserSign performs one personal cloud sign-in attempt.
	UserSign(ctx context.Context) (SignInOutcome, error)

	// FamilyList returns the families the account belongs to.
	FamilyList(ctx context.Context) ([]Family, error)

	// FamilyUserSign performs one family cloud sign-in attempt.
	FamilyUserSign(ctx context.Context, familyID string) (SignInOutcome, error)

	// UserSizeInfo queries personal and family capacity.
	UserSizeInfo(ctx context.Context) (CapacitySnapshot, error)
}

// ClientFactory creates a [CloudClient] for a username and password.
type ClientFactory func(username, password string) CloudClient
