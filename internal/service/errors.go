package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/uilacceb/splitter/internal/ledger"
	"github.com/uilacceb/splitter/internal/money"
)

// toConnectError maps ledger errors to Connect status codes. Server-side
// failures are logged on logger.
func toConnectError(logger *slog.Logger, op string, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, ledger.ErrInvalidExpense),
		errors.Is(err, money.ErrPrecision),
		errors.Is(err, money.ErrOutOfRange):
		code = connect.CodeInvalidArgument
	case errors.Is(err, ledger.ErrUnauthorized):
		code = connect.CodePermissionDenied
	case ledger.IsNotFound(err):
		code = connect.CodeNotFound
	case errors.Is(err, ledger.ErrStorageFailure):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		code = connect.CodeInternal
	}

	if code == connect.CodeInternal || code == connect.CodeUnavailable {
		logger.Error(op+" failed", "op", op, "code", code.String(), "error", err)
	}
	return connect.NewError(code, err)
}
