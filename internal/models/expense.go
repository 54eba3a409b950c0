package models

import "github.com/uilacceb/splitter/internal/money"

// Expense is an amount paid by one person on behalf of a group of people
// within an event. The amount is shared equally by everyone in SplitWith,
// which may or may not include the payer.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// EventID is the event this expense belongs to.
	EventID string

	// Description is a human-readable label (e.g., "Dinner", "Taxi").
	Description string

	// PaidBy is the person who paid.
	PaidBy string

	// Amount is the total paid, strictly positive.
	Amount money.Money

	// SplitWith lists the people sharing the expense. Never empty.
	SplitWith []string

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64
}
