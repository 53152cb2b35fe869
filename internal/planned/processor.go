// Package planned turns due planned transactions into concrete transactions.
package planned

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/schedule"
	"github.com/Veraticus/tally/internal/service"
)

// ErrNotActive is returned when skipping a template that is no longer pending.
var ErrNotActive = errors.New("planned transaction is not active")

// Processor materializes due planned transactions. Calls to ProcessDue on
// the same Processor are serialized.
type Processor struct {
	gateway service.Gateway
	clock   schedule.Clock
	newID   func() string
	mu      sync.Mutex
}

// Option configures a Processor.
type Option func(*Processor)

// WithIDGenerator overrides how materialized transaction IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(p *Processor) {
		p.newID = fn
	}
}

// NewProcessor creates a processor over gateway.
func NewProcessor(gateway service.Gateway, clock schedule.Clock, opts ...Option) *Processor {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	p := &Processor{
		gateway: gateway,
		clock:   clock,
		newID:   model.NewID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result reports what one processing run did.
type Result struct {
	Failed    map[string]error
	Created   []model.Transaction
	Cancelled []string
	Completed []string
}

// CreatedIDs returns the IDs of the materialized transactions.
func (r *Result) CreatedIDs() []string {
	ids := make([]string, len(r.Created))
	for i, txn := range r.Created {
		ids[i] = txn.ID
	}
	return ids
}

func (r *Result) merge(other *Result) {
	r.Created = append(r.Created, other.Created...)
	r.Cancelled = append(r.Cancelled, other.Cancelled...)
	r.Completed = append(r.Completed, other.Completed...)
	for id, err := range other.Failed {
		r.Failed[id] = err
	}
}

// ProcessDue materializes one occurrence for every active, auto-created
// template that is due today or earlier.
//
// Created transactions are stored but account balances are left to the
// caller. A failure to store one transaction is logged and recorded in
// Result.Failed; the scan continues and that template's bookkeeping is left
// untouched. Bookkeeping for all other templates is written in one batch
// after the scan.
func (p *Processor) ProcessDue(ctx context.Context) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	today := schedule.Day(now)

	templates, err := p.gateway.PlannedTransactions().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load planned transactions: %w", err)
	}

	result := &Result{Failed: make(map[string]error)}
	var updated []model.PlannedTransaction

	for _, pt := range templates {
		if !pt.IsActive() || !pt.AutoCreate || !schedule.IsDue(pt.DueDate(), today) {
			continue
		}
		due := schedule.Day(pt.DueDate())

		if schedule.HasReachedEndDate(due, pt.EndDate, pt.Recurrence) {
			pt.Status = model.PlannedCancelled
			pt.UpdatedAt = now
			updated = append(updated, pt)
			result.Cancelled = append(result.Cancelled, pt.ID)
			common.LogDebug(ctx, "Planned transaction ended before materializing", common.Fields{"planned_id": pt.ID})
			continue
		}

		txn := Materialize(pt, due, p.newID())
		txn.CreatedAt = now
		txn.UpdatedAt = now
		if err := p.create(ctx, txn); err != nil {
			common.LogError(ctx, err, "Failed to materialize planned transaction", common.Fields{
				"planned_id": pt.ID,
				"date":       due.Format(time.DateOnly),
			})
			result.Failed[pt.ID] = err
			continue
		}
		result.Created = append(result.Created, txn)

		Advance(&pt, due)
		pt.UpdatedAt = now
		switch pt.Status {
		case model.PlannedCompleted:
			result.Completed = append(result.Completed, pt.ID)
		case model.PlannedCancelled:
			result.Cancelled = append(result.Cancelled, pt.ID)
		}
		updated = append(updated, pt)
	}

	if err := p.gateway.PlannedTransactions().UpdateMany(ctx, updated); err != nil {
		return result, fmt.Errorf("save planned transaction bookkeeping: %w", err)
	}

	if len(updated) > 0 || len(result.Failed) > 0 {
		common.LogInfo(ctx, "Processed due planned transactions", common.Fields{
			"created":   len(result.Created),
			"cancelled": len(result.Cancelled),
			"completed": len(result.Completed),
			"failed":    len(result.Failed),
		})
	}
	return result, nil
}

// CatchUp runs ProcessDue until a run creates nothing or maxRuns is reached,
// materializing every missed occurrence of overdue templates.
func (p *Processor) CatchUp(ctx context.Context, maxRuns int) (*Result, error) {
	total := &Result{Failed: make(map[string]error)}
	for range maxRuns {
		result, err := p.ProcessDue(ctx)
		if result != nil {
			total.merge(result)
		}
		if err != nil {
			return total, err
		}
		if len(result.Created) == 0 && len(result.Cancelled) == 0 {
			break
		}
	}
	return total, nil
}

func (p *Processor) create(ctx context.Context, txn model.Transaction) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	return p.gateway.Transactions().Add(ctx, txn)
}

// Materialize builds the concrete transaction for one occurrence of pt.
func Materialize(pt model.PlannedTransaction, date time.Time, id string) model.Transaction {
	return model.Transaction{
		ID:            id,
		AccountID:     pt.AccountID,
		ToAccountID:   pt.ToAccountID,
		CategoryID:    pt.CategoryID,
		Type:          pt.Type,
		Amount:        pt.Amount,
		Description:   pt.Description,
		Date:          schedule.Day(date),
		Status:        model.StatusCleared,
		LabelIDs:      slices.Clone(pt.LabelIDs),
		PayeeIDs:      slices.Clone(pt.PayeeIDs),
		ItemName:      pt.ItemName,
		WarrantyUntil: pt.WarrantyUntil,
		PlannedID:     pt.ID,
	}
}

// Advance records that the occurrence on date was materialized and moves
// pt to its next occurrence. One-time templates complete; recurring ones
// are cancelled once the next occurrence passes the end date.
func Advance(pt *model.PlannedTransaction, date time.Time) {
	last := schedule.Day(date)
	pt.LastCreatedDate = &last

	if !pt.Recurrence.IsRecurring() {
		pt.Status = model.PlannedCompleted
		return
	}
	next := schedule.NextOccurrence(pt.ScheduledDate, pt.Recurrence, pt.LastCreatedDate)
	if schedule.HasReachedEndDate(next, pt.EndDate, pt.Recurrence) {
		pt.Status = model.PlannedCancelled
		return
	}
	pt.NextOccurrenceDate = &next
}

// Skip passes over the next occurrence without creating a transaction.
// One-time templates become skipped; recurring ones move to the following
// occurrence, or are cancelled when none remains.
func Skip(pt model.PlannedTransaction) (model.PlannedTransaction, error) {
	if !pt.IsActive() {
		return pt, fmt.Errorf("%w: %s is %s", ErrNotActive, pt.ID, pt.Status)
	}
	if !pt.Recurrence.IsRecurring() {
		pt.Status = model.PlannedSkipped
		return pt, nil
	}

	due := schedule.Day(pt.DueDate())
	next := schedule.NextOccurrence(pt.ScheduledDate, pt.Recurrence, &due)
	if schedule.HasReachedEndDate(next, pt.EndDate, pt.Recurrence) {
		pt.Status = model.PlannedCancelled
		return pt, nil
	}
	pt.NextOccurrenceDate = &next
	return pt, nil
}
