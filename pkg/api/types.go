// Package api defines the wire messages of the splitter RPC services.
//
// Messages are plain structs encoded as JSON. Money amounts travel as
// two-decimal strings ("109.60"); numbers are accepted on input.
package api

import "github.com/uilacceb/splitter/internal/money"

// Obligation is a directed debt: From owes To the Amount.
type Obligation struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}

type Expense struct {
	ID          string      `json:"id"`
	EventID     string      `json:"event_id"`
	Description string      `json:"description,omitempty"`
	PaidBy      string      `json:"paid_by"`
	Amount      money.Money `json:"amount"`
	SplitWith   []string    `json:"split_with"`
	CreatedAt   int64       `json:"created_at"`
	UpdatedAt   int64       `json:"updated_at"`
}

// Settlement is one persisted obligation row of an event.
type Settlement struct {
	ID      string      `json:"id"`
	EventID string      `json:"event_id"`
	From    string      `json:"from"`
	To      string      `json:"to"`
	Amount  money.Money `json:"amount"`
	Settled bool        `json:"settled"`
}

type AddExpenseRequest struct {
	EventID     string      `json:"event_id"`
	Description string      `json:"description,omitempty"`
	PaidBy      string      `json:"paid_by"`
	Amount      money.Money `json:"amount"`
	SplitWith   []string    `json:"split_with"`
}

type AddExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID   string      `json:"expense_id"`
	Description string      `json:"description,omitempty"`
	PaidBy      string      `json:"paid_by"`
	Amount      money.Money `json:"amount"`
	SplitWith   []string    `json:"split_with"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	EventID string `json:"event_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type ListSettlementsRequest struct {
	EventID string `json:"event_id"`
	// Settled, when set, keeps only rows with this flag.
	Settled *bool `json:"settled,omitempty"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type SetSettledRequest struct {
	SettlementID string `json:"settlement_id"`
	Settled      bool   `json:"settled"`
}

// SetSettledResponse carries the changed row and the event's ledger after
// regeneration.
type SetSettledResponse struct {
	Settlement  Settlement   `json:"settlement"`
	Settlements []Settlement `json:"settlements"`
}

type PreviewPlanRequest struct {
	EventID string `json:"event_id"`
	// Mode is "pairwise" (default) or "contribution".
	Mode string `json:"mode,omitempty"`
}

type PreviewPlanResponse struct {
	Payments []Obligation `json:"payments"`
	Mode     string       `json:"mode"`
}

type DeleteEventRequest struct {
	EventID string `json:"event_id"`
}

type DeleteEventResponse struct{}

type NetRequest struct {
	Obligations []Obligation `json:"obligations"`
}

type NetResponse struct {
	Obligations []Obligation `json:"obligations"`
}

type PlanRequest struct {
	Obligations []Obligation `json:"obligations"`
	// Mode is "pairwise", "contribution", or empty to detect it from the input.
	Mode string `json:"mode,omitempty"`
}

type PlanResponse struct {
	Payments []Obligation `json:"payments"`
	Mode     string       `json:"mode"`
}
