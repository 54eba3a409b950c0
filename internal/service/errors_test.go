package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/uilacceb/splitter/internal/ledger"
	"github.com/uilacceb/splitter/internal/money"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   connect.Code
		logged bool
	}{
		{"invalid expense", ledger.ValidationError{Field: "amount", Message: "must be positive"}, connect.CodeInvalidArgument, false},
		{"out of range", fmt.Errorf("net: %w", money.ErrOutOfRange), connect.CodeInvalidArgument, false},
		{"unauthorized", fmt.Errorf("%w: C", ledger.ErrUnauthorized), connect.CodePermissionDenied, false},
		{"not found", fmt.Errorf("%w: row", ledger.ErrNotFound), connect.CodeNotFound, false},
		{"storage failure", fmt.Errorf("%w: replace", ledger.ErrStorageFailure), connect.CodeUnavailable, true},
		{"canceled", context.Canceled, connect.CodeCanceled, false},
		{"unknown", errors.New("boom"), connect.CodeInternal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			err := toConnectError(logger, "AddExpense", tt.err)
			if got := connect.CodeOf(err); got != tt.want {
				t.Errorf("code = %v, want %v", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("cause lost: %v", err)
			}

			logged := strings.Contains(buf.String(), "AddExpense failed")
			if logged != tt.logged {
				t.Errorf("logged = %t, want %t (output %q)", logged, tt.logged, buf.String())
			}
		})
	}
}
