// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/uilacceb/splitter/internal/models"
)

// ErrNotFound is returned (possibly wrapped) when a record does not exist.
var ErrNotFound = errors.New("not found")

// LedgerStore is the narrow contract the regenerator needs. It is all the
// reconciliation engine knows about persistence.
type LedgerStore interface {
	// ListExpenses returns every expense of the event.
	ListExpenses(ctx context.Context, eventID string) ([]*models.Expense, error)

	// ListSettled returns the settled obligations of the event.
	ListSettled(ctx context.Context, eventID string) ([]*models.Settlement, error)

	// ReplaceUnsettled atomically deletes all unsettled rows of the event and
	// inserts the given ones. The store assigns IDs and timestamps and forces
	// Settled to false. If it fails, the previous unsettled rows must remain.
	ReplaceUnsettled(ctx context.Context, eventID string, rows []models.Settlement) error
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the service layer.
type Store interface {
	LedgerStore

	// CreateExpense persists a new expense.
	// The expense.ID and timestamps are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by its ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces description, payer, amount and participants of an
	// existing expense. The event of an expense never changes.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListSettlements returns the settled and unsettled rows of the event.
	ListSettlements(ctx context.Context, eventID string, filter models.SettlementFilter) ([]*models.Settlement, error)

	// GetSettlement retrieves a settlement row by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// SetSettled flips the settled flag of a row.
	SetSettled(ctx context.Context, settlementID string, settled bool) error

	// DeleteEvent removes every expense and settlement of the event.
	DeleteEvent(ctx context.Context, eventID string) error

	// ListEventIDs returns every event that has expenses or settlements.
	ListEventIDs(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
