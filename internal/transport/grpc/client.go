package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote TaskService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) AddTask(ctx context.Context, text, timeOfDay string, opts ...grpc.CallOption) (*Reply, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"text": structpb.NewStringValue(text),
	}}
	if timeOfDay != "" {
		req.Fields["time"] = structpb.NewStringValue(timeOfDay)
	}
	return c.invoke(ctx, "AddTask", req, opts...)
}

func (c *Client) ToggleTask(ctx context.Context, id string, opts ...grpc.CallOption) (*Reply, error) {
	return c.invoke(ctx, "ToggleTask", idRequest(id), opts...)
}

func (c *Client) DeleteTask(ctx context.Context, id string, opts ...grpc.CallOption) (*Reply, error) {
	return c.invoke(ctx, "DeleteTask", idRequest(id), opts...)
}

func (c *Client) ClearCompleted(ctx context.Context, opts ...grpc.CallOption) (*Reply, error) {
	return c.invoke(ctx, "ClearCompleted", &structpb.Struct{}, opts...)
}

// ListTasks accepts "", "all", "incomplete" or "completed".
func (c *Client) ListTasks(ctx context.Context, status string, opts ...grpc.CallOption) (*Reply, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	if status != "" {
		req.Fields["status"] = structpb.NewStringValue(status)
	}
	return c.invoke(ctx, "ListTasks", req, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*Reply, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return ReplyFromProto(out)
}

func idRequest(id string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id": structpb.NewStringValue(id),
	}}
}
