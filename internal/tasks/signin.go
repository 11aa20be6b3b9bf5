package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	personalBonusLabel = "  personal cloud sign-in bonus (M)"
	familyBonusLabel   = "  family cloud sign-in bonus (M)"
	familyStartLabel   = "  family cloud sign-in start ID:"
)

// SignInOpts controls concurrency of a [SignInTask].
type SignInOpts struct {
	PrivateThreads   int  // concurrent personal sign-in attempts
	FamilyThreads    int  // concurrent family sign-in attempts
	PrivateOnlyFirst bool // personal sign-in only for batch leaders
}

// SignInOptsFromConfig maps [shared.SignInConfig] onto [SignInOpts].
func SignInOptsFromConfig(c shared.SignInConfig) SignInOpts {
	return SignInOpts{
		PrivateThreads:   c.PrivateThreads,
		FamilyThreads:    c.FamilyThreads,
		PrivateOnlyFirst: c.PrivateOnlyFirst,
	}
}

// SignInResult is what one [SignInTask.Run] produced.
type SignInResult struct {
	Lines         []string
	PersonalBonus int64
	FamilyBonus   int64
	Family        *models.Family // nil when no family sign-in happened
}

// SignInTask signs a logged-in account into its personal and family clouds.
type SignInTask struct {
	opts   SignInOpts
	logger *log.Logger
}

// NewSignInTask creates a task. Thread counts below 1 are raised to 1.
func NewSignInTask(opts SignInOpts, logger *log.Logger) *SignInTask {
	opts.PrivateThreads = max(opts.PrivateThreads, 1)
	opts.FamilyThreads = max(opts.FamilyThreads, 1)
	if logger == nil {
		logger = log.Default()
	}
	return &SignInTask{opts: opts, logger: logger}
}

// Run signs acc in using client and returns the report lines for the account.
//
// Individual attempt failures count as zero bonus. Only a failure to list families is returned,
// so the caller can retry the whole task.
func (t *SignInTask) Run(ctx context.Context, client models.CloudClient, acc models.Account, familyID string) (SignInResult, error) {
	var result SignInResult
	logger := shared.WithLogger(t.logger, "account", acc.Display())

	if !t.opts.PrivateOnlyFirst || acc.IsLeader() {
		result.PersonalBonus = attempts(ctx, t.opts.PrivateThreads, logger, "personal", client.UserSign)
		result.Lines = append(result.Lines, fmt.Sprintf("%s %d", personalBonusLabel, result.PersonalBonus))
	} else {
		logger.Debug("skipping personal sign-in for non-leader")
	}

	families, err := client.FamilyList(ctx)
	if err != nil {
		return SignInResult{}, fmt.Errorf("family list: %w", err)
	}

	family, ok := models.SelectFamily(families, familyID)
	if !ok {
		logger.Debug("skipping family sign-in", "error", shared.ErrFamilyNotFound)
		return result, nil
	}
	if familyID != "" && family.ID != familyID {
		logger.Warn("configured family not found, using first family", "configured", familyID, "using", family.ID)
	}

	result.Family = &family
	result.Lines = append(result.Lines, fmt.Sprintf("%s %s", familyStartLabel, family.ID))

	sign := func(ctx context.Context) (models.SignInOutcome, error) {
		return client.FamilyUserSign(ctx, family.ID)
	}

	if t.opts.PrivateOnlyFirst && acc.IsLeader() {
		result.FamilyBonus = attempts(ctx, 1, logger, "family", sign)
	} else {
		result.FamilyBonus = attempts(ctx, t.opts.FamilyThreads, logger, "family", sign)
	}
	result.Lines = append(result.Lines, fmt.Sprintf("%s %d", familyBonusLabel, result.FamilyBonus))

	return result, nil
}

// attempts runs n sign-in attempts with at most n in flight and aggregates the bonus.
func attempts(ctx context.Context, n int, logger *log.Logger, kind string, fn func(context.Context) (models.SignInOutcome, error)) int64 {
	outcomes := make([]models.SignInOutcome, n)

	var g errgroup.Group
	g.SetLimit(n)
	for i := range n {
		g.Go(func() error {
			out, err := fn(ctx)
			if err != nil {
				logger.Debug("sign-in attempt failed", "kind", kind, "attempt", i+1, "error", err)
				return nil
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return models.Aggregate(outcomes)
}
