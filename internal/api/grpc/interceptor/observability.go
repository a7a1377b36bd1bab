package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/metrics"
)

// UnaryObservability records request counts, latency and a log line per call.
func UnaryObservability() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		observe(ctx, info.FullMethod, start, err)
		return resp, err
	}
}

func StreamObservability() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		observe(ss.Context(), info.FullMethod, start, err)
		return err
	}
}

func observe(ctx context.Context, method string, start time.Time, err error) {
	elapsed := time.Since(start)
	code := status.Code(err)
	metrics.GRPCRequests.WithLabelValues(method, code.String()).Inc()
	metrics.GRPCLatency.WithLabelValues(method).Observe(elapsed.Seconds())
	if err != nil {
		logger.WarnContext(ctx, "gRPC call failed", "method", method, "code", code.String(), "duration_ms", elapsed.Milliseconds(), "error", err)
		return
	}
	logger.DebugContext(ctx, "gRPC call", "method", method, "duration_ms", elapsed.Milliseconds())
}
