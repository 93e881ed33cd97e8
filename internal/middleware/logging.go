package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor logs every RPC call with its procedure, caller,
// duration and any error code.
type LoggingInterceptor struct{}

// NewLoggingInterceptor returns a Connect interceptor that logs every RPC call.
func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{}
}

// WrapUnary implements connect.Interceptor.
func (LoggingInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		logCall(ctx, req.Spec().Procedure, start, err)
		return resp, err
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (LoggingInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (LoggingInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		err := next(ctx, conn)
		logCall(ctx, conn.Spec().Procedure, start, err)
		return err
	}
}

func logCall(ctx context.Context, procedure string, start time.Time, err error) {
	// Empty before authentication.
	caller := []any{
		"user_id", GetUserID(ctx),
		"email", GetEmail(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	}

	if err == nil {
		slog.Info("RPC ok", append([]any{"procedure", procedure}, caller...)...)
		return
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		slog.Warn("RPC error", append([]any{
			"procedure", procedure,
			"code", connectErr.Code(),
			"error", connectErr.Message(),
		}, caller...)...)
	} else {
		slog.Error("RPC error", append([]any{
			"procedure", procedure,
			"error", err,
		}, caller...)...)
	}
}
