package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/uilacceb/splitter/internal/calculator"
	"github.com/uilacceb/splitter/pkg/api"
)

var _ api.CalculatorServiceHandler = (*CalculatorService)(nil)

// CalculatorService exposes the pure netting and planning functions.
// It has no storage.
type CalculatorService struct{}

func NewCalculatorService() *CalculatorService {
	return &CalculatorService{}
}

// validateObligations rejects rows the calculator cannot interpret.
func validateObligations(obligations []api.Obligation) error {
	for i, o := range obligations {
		if o.From == "" || o.To == "" {
			return fmt.Errorf("obligation %d: from and to are required", i)
		}
		if !o.Amount.IsPositive() {
			return fmt.Errorf("obligation %d: amount must be positive, got %s", i, o.Amount)
		}
		if err := o.Amount.CheckRange(); err != nil {
			return fmt.Errorf("obligation %d: %w", i, err)
		}
	}
	return nil
}

// Net collapses obligations to at most one per pair of people.
func (s *CalculatorService) Net(
	ctx context.Context,
	req *connect.Request[api.NetRequest],
) (*connect.Response[api.NetResponse], error) {
	if err := validateObligations(req.Msg.Obligations); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	netted, err := calculator.Net(obligationsFromAPI(req.Msg.Obligations))
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&api.NetResponse{Obligations: obligationsToAPI(netted)}), nil
}

// Plan proposes the fewest payments that clear the given obligations. Without
// a mode, the shape of the input decides.
func (s *CalculatorService) Plan(
	ctx context.Context,
	req *connect.Request[api.PlanRequest],
) (*connect.Response[api.PlanResponse], error) {
	if err := validateObligations(req.Msg.Obligations); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	obligations := obligationsFromAPI(req.Msg.Obligations)
	mode := calculator.DetectMode(obligations)
	if req.Msg.Mode != "" {
		parsed, ok := calculator.ParseMode(req.Msg.Mode)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown mode %q", req.Msg.Mode))
		}
		mode = parsed
	}

	payments, err := calculator.PlanWithMode(mode, obligations)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&api.PlanResponse{
		Payments: obligationsToAPI(payments),
		Mode:     mode.String(),
	}), nil
}
