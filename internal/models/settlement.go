package models

import "github.com/uilacceb/splitter/internal/money"

// Settlement is a persisted obligation between two people within one event.
//
// Unsettled rows (Settled == false) are derived: every regeneration of the
// event deletes and recreates them, so their IDs carry no meaning across
// regenerations. Settled rows are historical facts; only an explicit unsettle
// action flips them back.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// EventID is the event this settlement belongs to.
	EventID string

	// From is the person who owes (debtor).
	From string

	// To is the person who is owed (creditor).
	To string

	// Amount is the obligation amount, always positive.
	Amount money.Money

	// Settled is true once a participant marked the obligation as paid.
	Settled bool

	// CreatedAt is the Unix timestamp when the row was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the row.
	UpdatedAt int64
}

// SettlementFilter narrows a settlement listing.
type SettlementFilter struct {
	// Settled, when non-nil, keeps only rows with this settled flag.
	Settled *bool
}

// Matches reports whether s passes the filter.
func (f SettlementFilter) Matches(s *Settlement) bool {
	return f.Settled == nil || *f.Settled == s.Settled
}

// IsParty reports whether personID is the debtor or creditor of s.
func (s *Settlement) IsParty(personID string) bool {
	return personID != "" && (s.From == personID || s.To == personID)
}
