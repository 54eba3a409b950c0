package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor logs one line per RPC. Client-side failures are logged
// at warn, server-side failures (internal, unknown, unavailable) at error.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("person_id", GetPersonID(ctx)),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if err == nil {
				logger.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, slog.String("code", code.String()), slog.Any("error", err))
			logger.LogAttrs(ctx, rpcErrorLevel(code), "RPC error", attrs...)
			return resp, err
		}
	}
}

func rpcErrorLevel(code connect.Code) slog.Level {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeUnavailable, connect.CodeDataLoss:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
