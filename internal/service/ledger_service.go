package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/uilacceb/splitter/internal/calculator"
	"github.com/uilacceb/splitter/internal/ledger"
	"github.com/uilacceb/splitter/internal/middleware"
	"github.com/uilacceb/splitter/internal/models"
	"github.com/uilacceb/splitter/pkg/api"
)

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService on top of a Ledger.
type LedgerService struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(lg *ledger.Ledger, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{ledger: lg, logger: logger}
}

// AddExpense records an expense and regenerates the event's obligations.
func (s *LedgerService) AddExpense(
	ctx context.Context,
	req *connect.Request[api.AddExpenseRequest],
) (*connect.Response[api.AddExpenseResponse], error) {
	msg := req.Msg
	expense, err := s.ledger.AddExpense(ctx, &models.Expense{
		EventID:     msg.EventID,
		Description: msg.Description,
		PaidBy:      msg.PaidBy,
		Amount:      msg.Amount,
		SplitWith:   msg.SplitWith,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "AddExpense", err)
	}

	s.logger.Info("Expense added",
		"event_id", expense.EventID,
		"expense_id", expense.ID,
		"person_id", middleware.GetPersonID(ctx),
	)
	return connect.NewResponse(&api.AddExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// UpdateExpense edits an expense and regenerates the event's obligations.
func (s *LedgerService) UpdateExpense(
	ctx context.Context,
	req *connect.Request[api.UpdateExpenseRequest],
) (*connect.Response[api.UpdateExpenseResponse], error) {
	msg := req.Msg
	if msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id is required"))
	}

	expense, err := s.ledger.UpdateExpense(ctx, &models.Expense{
		ID:          msg.ExpenseID,
		Description: msg.Description,
		PaidBy:      msg.PaidBy,
		Amount:      msg.Amount,
		SplitWith:   msg.SplitWith,
	})
	if err != nil {
		return nil, toConnectError(s.logger, "UpdateExpense", err)
	}
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// DeleteExpense removes an expense and regenerates the event's obligations.
func (s *LedgerService) DeleteExpense(
	ctx context.Context,
	req *connect.Request[api.DeleteExpenseRequest],
) (*connect.Response[api.DeleteExpenseResponse], error) {
	if req.Msg.ExpenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id is required"))
	}
	if err := s.ledger.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError(s.logger, "DeleteExpense", err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns the expenses of an event.
func (s *LedgerService) ListExpenses(
	ctx context.Context,
	req *connect.Request[api.ListExpensesRequest],
) (*connect.Response[api.ListExpensesResponse], error) {
	if req.Msg.EventID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("event_id is required"))
	}

	expenses, err := s.ledger.ListExpenses(ctx, req.Msg.EventID)
	if err != nil {
		return nil, toConnectError(s.logger, "ListExpenses", err)
	}

	out := make([]api.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseToAPI(e))
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// ListSettlements returns the obligation rows of an event, optionally
// filtered by their settled flag.
func (s *LedgerService) ListSettlements(
	ctx context.Context,
	req *connect.Request[api.ListSettlementsRequest],
) (*connect.Response[api.ListSettlementsResponse], error) {
	if req.Msg.EventID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("event_id is required"))
	}

	rows, err := s.ledger.Obligations(ctx, req.Msg.EventID, models.SettlementFilter{Settled: req.Msg.Settled})
	if err != nil {
		return nil, toConnectError(s.logger, "ListSettlements", err)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: settlementsToAPI(rows)}), nil
}

// SetSettled marks a row settled or unsettled. Only the two people named on
// the row may do so.
func (s *LedgerService) SetSettled(
	ctx context.Context,
	req *connect.Request[api.SetSettledRequest],
) (*connect.Response[api.SetSettledResponse], error) {
	personID := middleware.GetPersonID(ctx)
	if personID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("not authenticated"))
	}
	if req.Msg.SettlementID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("settlement_id is required"))
	}

	row, err := s.ledger.SetSettled(ctx, personID, req.Msg.SettlementID, req.Msg.Settled)
	if err != nil {
		return nil, toConnectError(s.logger, "SetSettled", err)
	}

	rows, err := s.ledger.Obligations(ctx, row.EventID, models.SettlementFilter{})
	if err != nil {
		return nil, toConnectError(s.logger, "SetSettled", err)
	}

	return connect.NewResponse(&api.SetSettledResponse{
		Settlement:  settlementToAPI(row),
		Settlements: settlementsToAPI(rows),
	}), nil
}

// PreviewPlan proposes payments that clear the event's unsettled rows.
// The mode defaults to pairwise: rows where everyone owes one person would
// otherwise be read as a contribution pool.
func (s *LedgerService) PreviewPlan(
	ctx context.Context,
	req *connect.Request[api.PreviewPlanRequest],
) (*connect.Response[api.PreviewPlanResponse], error) {
	if req.Msg.EventID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("event_id is required"))
	}

	mode := calculator.ModePairwise
	if req.Msg.Mode != "" {
		parsed, ok := calculator.ParseMode(req.Msg.Mode)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown mode %q", req.Msg.Mode))
		}
		mode = parsed
	}

	payments, err := s.ledger.PreviewPlan(ctx, req.Msg.EventID, mode)
	if err != nil {
		return nil, toConnectError(s.logger, "PreviewPlan", err)
	}
	return connect.NewResponse(&api.PreviewPlanResponse{
		Payments: obligationsToAPI(payments),
		Mode:     mode.String(),
	}), nil
}

// DeleteEvent removes an event with all its expenses and settlements.
func (s *LedgerService) DeleteEvent(
	ctx context.Context,
	req *connect.Request[api.DeleteEventRequest],
) (*connect.Response[api.DeleteEventResponse], error) {
	if req.Msg.EventID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("event_id is required"))
	}
	if err := s.ledger.DeleteEvent(ctx, req.Msg.EventID); err != nil {
		return nil, toConnectError(s.logger, "DeleteEvent", err)
	}

	s.logger.Info("Event deleted via RPC", "event_id", req.Msg.EventID, "person_id", middleware.GetPersonID(ctx))
	return connect.NewResponse(&api.DeleteEventResponse{}), nil
}
