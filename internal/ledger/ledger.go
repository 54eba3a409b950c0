package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uilacceb/splitter/internal/calculator"
	"github.com/uilacceb/splitter/internal/lock"
	"github.com/uilacceb/splitter/internal/metrics"
	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/internal/money"
	"github.com/uilacceb/splitter/internal/storage"
)

const undoTimeout = 10 * time.Second

// Ledger applies expense and settlement changes to an event and regenerates
// its obligations in the same critical section. Work on one event is
// serialized through the Locker; different events run in parallel.
type Ledger struct {
	store   storage.Store
	regen   *Regenerator
	locker  lock.Locker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocker replaces the default in-process lock, e.g. with lock.Redis when
// several instances share one database.
func WithLocker(l lock.Locker) Option {
	return func(lg *Ledger) { lg.locker = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(lg *Ledger) { lg.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(lg *Ledger) { lg.logger = logger }
}

func New(store storage.Store, opts ...Option) *Ledger {
	lg := &Ledger{
		store:  store,
		regen:  NewRegenerator(store),
		locker: lock.NewLocal(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// ValidateExpense checks an expense before it is stored.
func ValidateExpense(e *models.Expense) error {
	if strings.TrimSpace(e.EventID) == "" {
		return ValidationError{Field: "event_id", Message: "is required"}
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return ValidationError{Field: "paid_by", Message: "is required"}
	}
	if !e.Amount.IsPositive() {
		return ValidationError{Field: "amount", Message: fmt.Sprintf("must be positive, got %s", e.Amount)}
	}
	if e.Amount > money.MaxAmount {
		return ValidationError{Field: "amount", Message: fmt.Sprintf("must not exceed %s, got %s", money.MaxAmount, e.Amount)}
	}
	if len(e.SplitWith) == 0 {
		return ValidationError{Field: "split_with", Message: "must name at least one person"}
	}
	seen := make(map[string]bool, len(e.SplitWith))
	for _, person := range e.SplitWith {
		if strings.TrimSpace(person) == "" {
			return ValidationError{Field: "split_with", Message: "contains an empty person ID"}
		}
		if seen[person] {
			return ValidationError{Field: "split_with", Message: fmt.Sprintf("lists %s more than once", person)}
		}
		seen[person] = true
	}
	return nil
}

// AddExpense stores a new expense and regenerates its event. If regeneration
// fails the expense is removed again, so a retry does not count it twice.
func (l *Ledger) AddExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	if err := ValidateExpense(e); err != nil {
		return nil, err
	}

	err := l.withEvent(ctx, e.EventID, func(ctx context.Context) error {
		if err := l.store.CreateExpense(ctx, e); err != nil {
			return storageError("create expense", err)
		}
		return l.regenerateOrUndo(ctx, e.EventID, "add expense", func(ctx context.Context) error {
			return l.store.DeleteExpense(ctx, e.ID)
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateExpense replaces an expense's payer, amount, description and
// participants. The event of an expense never changes. If regeneration fails
// the previous version is restored.
func (l *Ledger) UpdateExpense(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	existing, err := l.store.GetExpense(ctx, e.ID)
	if err != nil {
		return nil, storageError("get expense", err)
	}
	e.EventID = existing.EventID
	e.CreatedAt = existing.CreatedAt
	if err := ValidateExpense(e); err != nil {
		return nil, err
	}

	err = l.withEvent(ctx, e.EventID, func(ctx context.Context) error {
		before, err := l.store.GetExpense(ctx, e.ID)
		if err != nil {
			return storageError("get expense", err)
		}
		if err := l.store.UpdateExpense(ctx, e); err != nil {
			return storageError("update expense", err)
		}
		return l.regenerateOrUndo(ctx, e.EventID, "update expense", func(ctx context.Context) error {
			return l.store.UpdateExpense(ctx, before)
		})
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExpense removes an expense and regenerates its event. If regeneration
// fails the expense is stored again under its original ID.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID string) error {
	existing, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return storageError("get expense", err)
	}

	return l.withEvent(ctx, existing.EventID, func(ctx context.Context) error {
		before, err := l.store.GetExpense(ctx, expenseID)
		if err != nil {
			return storageError("get expense", err)
		}
		if err := l.store.DeleteExpense(ctx, expenseID); err != nil {
			return storageError("delete expense", err)
		}
		return l.regenerateOrUndo(ctx, before.EventID, "delete expense", func(ctx context.Context) error {
			return l.store.CreateExpense(ctx, before)
		})
	})
}

// ListExpenses returns the expenses of an event.
func (l *Ledger) ListExpenses(ctx context.Context, eventID string) ([]*models.Expense, error) {
	expenses, err := l.store.ListExpenses(ctx, eventID)
	if err != nil {
		return nil, storageError("list expenses", err)
	}
	return expenses, nil
}

// Regenerate rebuilds an event's unsettled obligations under its lock.
func (l *Ledger) Regenerate(ctx context.Context, eventID string) ([]calculator.Obligation, error) {
	var out []calculator.Obligation
	err := l.withEvent(ctx, eventID, func(ctx context.Context) error {
		var err error
		out, err = l.regenerate(ctx, eventID)
		return err
	})
	return out, err
}

// RegenerateAll regenerates every known event, at most limit at a time.
// It returns the number of events regenerated before the first failure.
func (l *Ledger) RegenerateAll(ctx context.Context, limit int) (int, error) {
	eventIDs, err := l.store.ListEventIDs(ctx)
	if err != nil {
		return 0, storageError("list events", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	done := make(chan struct{}, len(eventIDs))
	for _, eventID := range eventIDs {
		g.Go(func() error {
			if _, err := l.Regenerate(ctx, eventID); err != nil {
				return fmt.Errorf("event %s: %w", eventID, err)
			}
			done <- struct{}{}
			return nil
		})
	}
	err = g.Wait()
	return len(done), err
}

// SetSettled marks a settlement row as settled or unsettled on behalf of
// actorID, then regenerates the event. Only the debtor or creditor of the row
// may change it; anyone else gets ErrUnauthorized and nothing changes.
//
// Unsettling a row hands it back to regeneration, which replaces it with a
// fresh row, so the returned record's ID is not stable in that case.
func (l *Ledger) SetSettled(ctx context.Context, actorID, settlementID string, settled bool) (*models.Settlement, error) {
	row, err := l.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, storageError("get settlement", err)
	}
	if !row.IsParty(actorID) {
		return nil, fmt.Errorf("%w: %s is not a party to settlement %s", ErrUnauthorized, actorID, settlementID)
	}

	err = l.withEvent(ctx, row.EventID, func(ctx context.Context) error {
		// The row may have been regenerated away while we waited for the lock.
		current, err := l.store.GetSettlement(ctx, settlementID)
		if err != nil {
			return storageError("get settlement", err)
		}
		if !current.IsParty(actorID) {
			return fmt.Errorf("%w: %s is not a party to settlement %s", ErrUnauthorized, actorID, settlementID)
		}

		previous := current.Settled
		if err := l.store.SetSettled(ctx, settlementID, settled); err != nil {
			return storageError("set settled", err)
		}
		row = current
		row.Settled = settled

		return l.regenerateOrUndo(ctx, row.EventID, "set settled", func(ctx context.Context) error {
			return l.store.SetSettled(ctx, settlementID, previous)
		})
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Settlement updated",
		"event_id", row.EventID,
		"settlement_id", settlementID,
		"settled", settled,
		"actor", actorID,
	)
	return row, nil
}

// Obligations lists the settlement rows of an event.
func (l *Ledger) Obligations(ctx context.Context, eventID string, filter models.SettlementFilter) ([]*models.Settlement, error) {
	rows, err := l.store.ListSettlements(ctx, eventID, filter)
	if err != nil {
		return nil, storageError("list settlements", err)
	}
	return rows, nil
}

// PreviewPlan proposes the fewest payments that clear the event's unsettled
// obligations. Nothing is persisted.
func (l *Ledger) PreviewPlan(ctx context.Context, eventID string, mode calculator.Mode) ([]calculator.Obligation, error) {
	unsettled := false
	rows, err := l.Obligations(ctx, eventID, models.SettlementFilter{Settled: &unsettled})
	if err != nil {
		return nil, err
	}

	obligations := make([]calculator.Obligation, 0, len(rows))
	for _, row := range rows {
		obligations = append(obligations, calculator.Obligation{From: row.From, To: row.To, Amount: row.Amount})
	}
	plan, err := calculator.PlanWithMode(mode, obligations)
	if err != nil {
		return nil, fmt.Errorf("%w: event %s: %w", ErrInvalidExpense, eventID, err)
	}
	return plan, nil
}

// DeleteEvent removes every expense and settlement of an event.
func (l *Ledger) DeleteEvent(ctx context.Context, eventID string) error {
	return l.withEvent(ctx, eventID, func(ctx context.Context) error {
		if err := l.store.DeleteEvent(ctx, eventID); err != nil {
			return storageError("delete event", err)
		}
		l.logger.Info("Event deleted", "event_id", eventID)
		return nil
	})
}

// regenerateOrUndo regenerates the event after a mutation. If that fails it
// runs undo so the event is left as it was before the mutation, and returns
// the regeneration error. Must be called with the event lock held.
func (l *Ledger) regenerateOrUndo(ctx context.Context, eventID, op string, undo func(context.Context) error) error {
	_, err := l.regenerate(ctx, eventID)
	if err == nil {
		return nil
	}

	// The request context may be the reason regeneration failed.
	undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), undoTimeout)
	defer cancel()
	if undoErr := undo(undoCtx); undoErr != nil {
		l.logger.Error("Failed to undo mutation",
			"event_id", eventID,
			"op", op,
			"error", undoErr,
		)
		return errors.Join(err, storageError("undo "+op, undoErr))
	}

	l.logger.Warn("Mutation undone after failed regeneration", "event_id", eventID, "op", op)
	return err
}

// withEvent runs fn while holding the event's lock.
func (l *Ledger) withEvent(ctx context.Context, eventID string, fn func(context.Context) error) error {
	unlock, err := l.locker.Lock(ctx, eventID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: lock event %s: %w", ErrStorageFailure, eventID, err)
	}
	defer unlock()

	return fn(ctx)
}

// regenerate must be called with the event lock held.
func (l *Ledger) regenerate(ctx context.Context, eventID string) ([]calculator.Obligation, error) {
	start := time.Now()
	out, err := l.regen.Regenerate(ctx, eventID)
	l.metrics.ObserveRegeneration(time.Since(start), len(out), err)
	if err != nil {
		l.logger.Error("Regeneration failed", "event_id", eventID, "error", err)
		return nil, err
	}

	l.logger.Debug("Regeneration completed",
		"event_id", eventID,
		"outstanding", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
