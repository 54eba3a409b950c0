package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService.
	LedgerServiceName = "splitter.v1.LedgerService"
	// CalculatorServiceName is the fully-qualified name of the CalculatorService.
	CalculatorServiceName = "splitter.v1.CalculatorService"
)

// Procedure paths, in the form "/<service>/<method>".
const (
	LedgerServiceAddExpenseProcedure      = "/" + LedgerServiceName + "/AddExpense"
	LedgerServiceUpdateExpenseProcedure   = "/" + LedgerServiceName + "/UpdateExpense"
	LedgerServiceDeleteExpenseProcedure   = "/" + LedgerServiceName + "/DeleteExpense"
	LedgerServiceListExpensesProcedure    = "/" + LedgerServiceName + "/ListExpenses"
	LedgerServiceListSettlementsProcedure = "/" + LedgerServiceName + "/ListSettlements"
	LedgerServiceSetSettledProcedure      = "/" + LedgerServiceName + "/SetSettled"
	LedgerServicePreviewPlanProcedure     = "/" + LedgerServiceName + "/PreviewPlan"
	LedgerServiceDeleteEventProcedure     = "/" + LedgerServiceName + "/DeleteEvent"

	CalculatorServiceNetProcedure  = "/" + CalculatorServiceName + "/Net"
	CalculatorServicePlanProcedure = "/" + CalculatorServiceName + "/Plan"
)

// LedgerServiceHandler is implemented by the ledger RPC server.
type LedgerServiceHandler interface {
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
	SetSettled(context.Context, *connect.Request[SetSettledRequest]) (*connect.Response[SetSettledResponse], error)
	PreviewPlan(context.Context, *connect.Request[PreviewPlanRequest]) (*connect.Response[PreviewPlanResponse], error)
	DeleteEvent(context.Context, *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error)
}

// CalculatorServiceHandler is implemented by the stateless calculator server.
type CalculatorServiceHandler interface {
	Net(context.Context, *connect.Request[NetRequest]) (*connect.Response[NetResponse], error)
	Plan(context.Context, *connect.Request[PlanRequest]) (*connect.Response[PlanResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LedgerServiceAddExpenseProcedure, connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(LedgerServiceUpdateExpenseProcedure, connect.NewUnaryHandler(LedgerServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(LedgerServiceDeleteExpenseProcedure, connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(LedgerServiceListSettlementsProcedure, connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...))
	mux.Handle(LedgerServiceSetSettledProcedure, connect.NewUnaryHandler(LedgerServiceSetSettledProcedure, svc.SetSettled, opts...))
	mux.Handle(LedgerServicePreviewPlanProcedure, connect.NewUnaryHandler(LedgerServicePreviewPlanProcedure, svc.PreviewPlan, opts...))
	mux.Handle(LedgerServiceDeleteEventProcedure, connect.NewUnaryHandler(LedgerServiceDeleteEventProcedure, svc.DeleteEvent, opts...))

	return "/" + LedgerServiceName + "/", mux
}

// NewCalculatorServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewCalculatorServiceHandler(svc CalculatorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)

	mux := http.NewServeMux()
	mux.Handle(CalculatorServiceNetProcedure, connect.NewUnaryHandler(CalculatorServiceNetProcedure, svc.Net, opts...))
	mux.Handle(CalculatorServicePlanProcedure, connect.NewUnaryHandler(CalculatorServicePlanProcedure, svc.Plan, opts...))

	return "/" + CalculatorServiceName + "/", mux
}

// LedgerServiceClient calls a remote LedgerService.
type LedgerServiceClient struct {
	addExpense      *connect.Client[AddExpenseRequest, AddExpenseResponse]
	updateExpense   *connect.Client[UpdateExpenseRequest, UpdateExpenseResponse]
	deleteExpense   *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	listExpenses    *connect.Client[ListExpensesRequest, ListExpensesResponse]
	listSettlements *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	setSettled      *connect.Client[SetSettledRequest, SetSettledResponse]
	previewPlan     *connect.Client[PreviewPlanRequest, PreviewPlanResponse]
	deleteEvent     *connect.Client[DeleteEventRequest, DeleteEventResponse]
}

// NewLedgerServiceClient creates a client for the LedgerService at baseURL.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = append([]connect.ClientOption{WithCodec()}, opts...)

	return &LedgerServiceClient{
		addExpense:      connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		updateExpense:   connect.NewClient[UpdateExpenseRequest, UpdateExpenseResponse](httpClient, baseURL+LedgerServiceUpdateExpenseProcedure, opts...),
		deleteExpense:   connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		listExpenses:    connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		listSettlements: connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
		setSettled:      connect.NewClient[SetSettledRequest, SetSettledResponse](httpClient, baseURL+LedgerServiceSetSettledProcedure, opts...),
		previewPlan:     connect.NewClient[PreviewPlanRequest, PreviewPlanResponse](httpClient, baseURL+LedgerServicePreviewPlanProcedure, opts...),
		deleteEvent:     connect.NewClient[DeleteEventRequest, DeleteEventResponse](httpClient, baseURL+LedgerServiceDeleteEventProcedure, opts...),
	}
}

func (c *LedgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetSettled(ctx context.Context, req *connect.Request[SetSettledRequest]) (*connect.Response[SetSettledResponse], error) {
	return c.setSettled.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) PreviewPlan(ctx context.Context, req *connect.Request[PreviewPlanRequest]) (*connect.Response[PreviewPlanResponse], error) {
	return c.previewPlan.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteEvent(ctx context.Context, req *connect.Request[DeleteEventRequest]) (*connect.Response[DeleteEventResponse], error) {
	return c.deleteEvent.CallUnary(ctx, req)
}

// CalculatorServiceClient calls a remote CalculatorService.
type CalculatorServiceClient struct {
	net  *connect.Client[NetRequest, NetResponse]
	plan *connect.Client[PlanRequest, PlanResponse]
}

// NewCalculatorServiceClient creates a client for the CalculatorService at baseURL.
func NewCalculatorServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CalculatorServiceClient {
	opts = append([]connect.ClientOption{WithCodec()}, opts...)

	return &CalculatorServiceClient{
		net:  connect.NewClient[NetRequest, NetResponse](httpClient, baseURL+CalculatorServiceNetProcedure, opts...),
		plan: connect.NewClient[PlanRequest, PlanResponse](httpClient, baseURL+CalculatorServicePlanProcedure, opts...),
	}
}

func (c *CalculatorServiceClient) Net(ctx context.Context, req *connect.Request[NetRequest]) (*connect.Response[NetResponse], error) {
	return c.net.CallUnary(ctx, req)
}

func (c *CalculatorServiceClient) Plan(ctx context.Context, req *connect.Request[PlanRequest]) (*connect.Response[PlanResponse], error) {
	return c.plan.CallUnary(ctx, req)
}
