package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/retry"
	"github.com/desertthunder/cloudsign/internal/shared"
)

// BatchOpts configures a [BatchRunner].
type BatchOpts struct {
	FamilyIDs []string // family id per batch, by batch number
	Login     retry.Policy
	Task      retry.Policy
}

// BatchContext is the state of the batch currently being processed.
type BatchContext struct {
	Number      int
	FamilyID    string
	Leader      *models.Account
	Baseline    models.CapacitySnapshot
	HasBaseline bool

	closed bool
}

// NewBatchContext resolves the family id for batch n.
func NewBatchContext(n int, familyIDs []string) *BatchContext {
	return &BatchContext{Number: n, FamilyID: models.FamilyIDFor(familyIDs, n)}
}

// Summary counts what a [BatchRunner.Run] did.
type Summary struct {
	Accounts      int   // accounts with complete credentials
	Skipped       int   // pairs with a missing username or password
	LoginFailures int   // accounts abandoned at login or baseline capture
	TaskFailures  int   // accounts whose sign-in task exhausted its retries
	Batches       int   // closed batches
	Deltas        int   // batches that reported a capacity delta
	PersonalBonus int64 // MiB, summed over accounts
	FamilyBonus   int64 // MiB, summed over accounts
}

// BatchRunner processes accounts sequentially, batch by batch.
type BatchRunner struct {
	factory models.ClientFactory
	task    *SignInTask
	opts    BatchOpts
	logger  *log.Logger
}

// NewBatchRunner creates a runner that builds one client per account with factory.
func NewBatchRunner(factory models.ClientFactory, task *SignInTask, opts BatchOpts, logger *log.Logger) *BatchRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &BatchRunner{factory: factory, task: task, opts: opts, logger: logger}
}

// Run signs in every account in order and records results in report.
//
// A cancelled context stops the loop before the next account; lines recorded so far stay in the report
// and the batch in progress is still closed. Batch closes ignore cancellation.
func (r *BatchRunner) Run(ctx context.Context, accounts []models.Account, report *Report) Summary {
	var (
		summary Summary
		bc      *BatchContext
	)
	closeCtx := context.WithoutCancel(ctx)

	for i, acc := range accounts {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run interrupted", "remaining", len(accounts)-i, "error", err)
			if bc != nil {
				r.closeBatch(closeCtx, bc, report, &summary)
			}
			break
		}

		if bc == nil || bc.Number != acc.Batch() {
			bc = NewBatchContext(acc.Batch(), r.opts.FamilyIDs)
			r.logger.Debug("batch start", "batch", bc.Number, "family_id", bc.FamilyID)
		}

		r.processAccount(ctx, acc, bc, report, &summary)

		if acc.ClosesBatch() || i == len(accounts)-1 {
			r.closeBatch(closeCtx, bc, report, &summary)
		}
	}

	r.logger.Info("run complete",
		"accounts", summary.Accounts, "skipped", summary.Skipped,
		"login_failures", summary.LoginFailures, "task_failures", summary.TaskFailures,
		"batches", summary.Batches)
	return summary
}

func (r *BatchRunner) processAccount(ctx context.Context, acc models.Account, bc *BatchContext, report *Report, summary *Summary) {
	if !acc.Complete() {
		r.logger.Debug("skipping account", "index", acc.Index, "error", shared.ErrConfigurationGap)
		summary.Skipped++
		return
	}
	summary.Accounts++

	name := acc.Display()
	logger := shared.WithLogger(r.logger, "account", name)

	defer report.Append("")
	report.Add("%d. account %s start", acc.Index+1, name)

	client := r.factory(acc.Username, acc.Password)
	if err := retry.Run(ctx, r.opts.Login, client.Login); err != nil {
		logger.Error("login failed", "error", err)
		report.Add("  account %s login failed: %v", name, err)
		summary.LoginFailures++
		return
	}

	if acc.IsLeader() {
		snap, err := client.UserSizeInfo(ctx)
		if err != nil {
			logger.Error("baseline capacity query failed", "error", err)
			report.Add("  account %s capacity query failed: %v", name, err)
			summary.LoginFailures++
			return
		}
		leader := acc
		bc.Leader = &leader
		bc.Baseline = snap
		bc.HasBaseline = true
	}

	result, err := retry.Do(ctx, r.opts.Task, func(ctx context.Context) (SignInResult, error) {
		return r.task.Run(ctx, client, acc, bc.FamilyID)
	})
	if err != nil {
		err = fmt.Errorf("%w: %w", shared.ErrTaskExhausted, err)
		logger.Error("sign-in task failed", "error", err)
		report.Add("  account %s sign-in failed: %v", name, err)
		summary.TaskFailures++
		return
	}

	report.Append(result.Lines...)
	summary.PersonalBonus += result.PersonalBonus
	summary.FamilyBonus += result.FamilyBonus
}

// closeBatch reports the capacity gained by the batch, measured on the leader. It runs at most once per batch.
func (r *BatchRunner) closeBatch(ctx context.Context, bc *BatchContext, report *Report, summary *Summary) {
	if bc.closed {
		return
	}
	bc.closed = true
	summary.Batches++

	if !bc.HasBaseline || bc.Leader == nil {
		r.logger.Warn("batch has no capacity baseline, skipping delta", "batch", bc.Number)
		return
	}

	name := bc.Leader.Display()
	logger := shared.WithLogger(r.logger, "account", name, "batch", bc.Number)

	client := r.factory(bc.Leader.Username, bc.Leader.Password)
	if err := retry.Run(ctx, r.opts.Login, client.Login); err != nil {
		logger.Error("leader re-login failed", "error", err)
		report.Add("batch %d leader %s login failed: %v", bc.Number+1, name, err)
		return
	}

	final, err := client.UserSizeInfo(ctx)
	if err != nil {
		logger.Error("final capacity query failed", "error", err)
		report.Add("batch %d leader %s capacity query failed: %v", bc.Number+1, name, err)
		return
	}

	delta := final.Sub(bc.Baseline)
	summary.Deltas++

	report.Append(
		fmt.Sprintf("sign-in %s personal capacity gained %s GiB", name, shared.FormatGiB(delta.PersonalTotal)),
		fmt.Sprintf("sign-in %s family capacity gained %s GiB", name, shared.FormatGiB(delta.FamilyTotal)),
		fmt.Sprintf("before %s personal capacity %s GiB", name, shared.FormatGiB(bc.Baseline.PersonalTotal)),
		fmt.Sprintf("before %s family capacity %s GiB", name, shared.FormatGiB(bc.Baseline.FamilyTotal)),
		fmt.Sprintf("  leader %s personal capacity now %s GiB", name, shared.FormatGiB(final.PersonalTotal)),
		fmt.Sprintf("  leader %s family capacity now %s GiB", name, shared.FormatGiB(final.FamilyTotal)),
		"",
	)
}
