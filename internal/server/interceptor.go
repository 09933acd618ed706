package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/material-adapter/internal/common"
)

// RequestIDHeader is read from incoming metadata; a new id is minted when absent.
const RequestIDHeader = "x-request-id"

// LoggingInterceptor tags the context with a request id and logs every call.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		reqID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) > 0 {
				reqID = v[0]
			}
		}
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx = common.WithRequestID(ctx, reqID)

		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("rpc.failed",
				"req_id", reqID,
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, err
		}
		logger.Info("rpc.ok", "req_id", reqID, "method", info.FullMethod, "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}
