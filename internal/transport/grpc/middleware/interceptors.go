package middleware

import (
	"context"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Raisondetr3/tasktango/pkg/logger"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

const RequestIDMetadataKey = "x-request-id"

// RequestID returns the id attached by RequestIDUnaryInterceptor, or "".
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func LoggingUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	duration := time.Since(start)

	logger.LogGRPCRequest(ctx, info.FullMethod, duration, err)
	return resp, err
}

// RequestIDUnaryInterceptor propagates the caller's x-request-id or mints a
// new one, and echoes it in the response header.
func RequestIDUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	requestID := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDMetadataKey); len(ids) > 0 {
			requestID = ids[0]
		}
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	header := metadata.New(map[string]string{RequestIDMetadataKey: requestID})
	if err := grpc.SetHeader(ctx, header); err != nil {
		slog.DebugContext(ctx, "Failed to set request id header", slog.String("error", err.Error()))
	}

	return handler(ctx, req)
}

func PanicRecoveryUnaryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered in gRPC handler",
				slog.String("method", info.FullMethod),
				slog.Any("panic", r))
			err = status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

func ChainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			currentHandler := chain
			chain = func(currentCtx context.Context, currentReq interface{}) (interface{}, error) {
				return interceptor(currentCtx, currentReq, info, currentHandler)
			}
		}
		return chain(ctx, req)
	}
}
