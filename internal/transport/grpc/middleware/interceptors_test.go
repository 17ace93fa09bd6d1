package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/tasktango.v1.TaskService/ListTasks"}

func TestChainUnaryInterceptors_Order(t *testing.T) {
	var order []string
	mk := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			order = append(order, name)
			return handler(ctx, req)
		}
	}

	chain := ChainUnaryInterceptors(mk("a"), mk("b"), mk("c"))
	resp, err := chain(context.Background(), "req", testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		order = append(order, "handler")
		return "resp", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "resp", resp)
	assert.Equal(t, []string{"a", "b", "c", "handler"}, order)
}

func TestPanicRecoveryUnaryInterceptor(t *testing.T) {
	_, err := PanicRecoveryUnaryInterceptor(context.Background(), nil, testInfo,
		func(context.Context, interface{}) (interface{}, error) { panic("boom") })

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
}

func TestRequestIDUnaryInterceptor(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "abc"))

	var seen string
	_, err := RequestIDUnaryInterceptor(ctx, nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = RequestID(ctx)
		return nil, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "abc", seen)
}

func TestRequestIDUnaryInterceptor_Generates(t *testing.T) {
	var seen string
	_, err := RequestIDUnaryInterceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = RequestID(ctx)
		return nil, nil
	})

	require.NoError(t, err)
	assert.Len(t, seen, 36)
}
