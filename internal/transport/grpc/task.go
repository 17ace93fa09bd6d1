package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/Raisondetr3/tasktango/internal/errors"
	"github.com/Raisondetr3/tasktango/internal/model"
)

const ServiceName = "tasktango.v1.TaskService"

// TaskServiceServer is the server API for tasktango.v1.TaskService. Requests
// and replies are google.protobuf.Struct values.
type TaskServiceServer interface {
	AddTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ClearCompleted(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var TaskServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddTask", Handler: unaryHandler("AddTask", TaskServiceServer.AddTask)},
		{MethodName: "ToggleTask", Handler: unaryHandler("ToggleTask", TaskServiceServer.ToggleTask)},
		{MethodName: "DeleteTask", Handler: unaryHandler("DeleteTask", TaskServiceServer.DeleteTask)},
		{MethodName: "ClearCompleted", Handler: unaryHandler("ClearCompleted", TaskServiceServer.ClearCompleted)},
		{MethodName: "ListTasks", Handler: unaryHandler("ListTasks", TaskServiceServer.ListTasks)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tasktango/v1/task.proto",
}

func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&TaskServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(
	method string,
	call func(TaskServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(TaskServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func (s *GRPCServer) AddTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, timeOfDay := model.AddTaskRequestFromProto(req)

	res, err := s.tasks.AddWithTime(ctx, text, timeOfDay)
	if err != nil {
		return nil, toStatus(err)
	}
	return ResultToProto(res), nil
}

func (s *GRPCServer) ToggleTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.tasks.ToggleComplete(ctx, model.TaskIDRequestFromProto(req))
	if err != nil {
		return nil, toStatus(err)
	}
	if res.Task == nil {
		return nil, apperrors.ErrTaskNotFound.ToGRPCStatus()
	}
	return ResultToProto(res), nil
}

func (s *GRPCServer) DeleteTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.tasks.Delete(ctx, model.TaskIDRequestFromProto(req))
	if err != nil {
		return nil, toStatus(err)
	}
	if res.Task == nil {
		return nil, apperrors.ErrTaskNotFound.ToGRPCStatus()
	}
	return ResultToProto(res), nil
}

func (s *GRPCServer) ClearCompleted(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.tasks.ClearCompleted(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return ResultToProto(res), nil
}

func (s *GRPCServer) ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var tasks []model.Task

	switch status := req.GetFields()["status"].GetStringValue(); status {
	case "", "all":
		tasks = s.tasks.Tasks()
	case "incomplete":
		tasks = s.tasks.Incomplete()
	case "completed":
		tasks = s.tasks.Completed()
	default:
		return nil, apperrors.ErrInvalidFilter.ToGRPCStatus()
	}

	return ListToProto(tasks, s.tasks.TotalPoints()), nil
}

func toStatus(err error) error {
	return apperrors.AsServiceError(err).ToGRPCStatus()
}
