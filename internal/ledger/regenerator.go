// Package ledger keeps each event's persisted obligations consistent with its
// expenses and settlement history.
package ledger

import (
	"context"
	"fmt"

	"github.com/uilacceb/splitter/internal/calculator"
	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/storage"
)

// Regenerator rebuilds the unsettled obligations of one event from scratch.
//
// Algorithm:
//  1. Derive raw obligations from every expense (equal shares to the payer)
//  2. Net them per pair of people
//  3. Subtract settled amounts on the same directed pair
//  4. Drop balances that are zero or negative
//  5. Replace the event's unsettled rows with the result
//
// Regenerator does no locking. Callers serialize runs per event.
type Regenerator struct {
	store storage.LedgerStore
}

func NewRegenerator(store storage.LedgerStore) *Regenerator {
	return &Regenerator{store: store}
}

// Compute runs steps 1-4 and returns the outstanding obligations without
// writing anything.
func (r *Regenerator) Compute(ctx context.Context, eventID string) ([]calculator.Obligation, error) {
	expenses, err := r.store.ListExpenses(ctx, eventID)
	if err != nil {
		return nil, storageError("list expenses", err)
	}
	settled, err := r.store.ListSettled(ctx, eventID)
	if err != nil {
		return nil, storageError("list settled", err)
	}

	inputs := make([]calculator.ExpenseForBalance, 0, len(expenses))
	for _, e := range expenses {
		inputs = append(inputs, calculator.ExpenseForBalance{
			PayerID:      e.PaidBy,
			Amount:       e.Amount,
			Participants: e.SplitWith,
		})
	}

	paid := make([]calculator.Obligation, 0, len(settled))
	for _, s := range settled {
		paid = append(paid, calculator.Obligation{From: s.From, To: s.To, Amount: s.Amount})
	}

	outstanding, err := calculator.Outstanding(inputs, paid)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s: %w", ErrInvalidExpense, eventID, err)
	}
	return outstanding, nil
}

// Regenerate runs all five steps. On any error the previously persisted
// unsettled rows are left as they were.
func (r *Regenerator) Regenerate(ctx context.Context, eventID string) ([]calculator.Obligation, error) {
	outstanding, err := r.Compute(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Settlement, 0, len(outstanding))
	for _, o := range outstanding {
		rows = append(rows, models.Settlement{
			EventID: eventID,
			From:    o.From,
			To:      o.To,
			Amount:  o.Amount,
		})
	}
	if err := r.store.ReplaceUnsettled(ctx, eventID, rows); err != nil {
		return nil, storageError("replace unsettled", err)
	}
	return outstanding, nil
}
