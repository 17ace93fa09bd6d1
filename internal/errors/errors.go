package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ServiceError struct {
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
	Time    time.Time  `json:"time"`
}

func NewServiceError(code codes.Code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Time:    time.Now(),
	}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code.String(), e.Message)
}

// Is matches on code and message so wrapped copies compare equal to the
// catalogue entries below.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func (e *ServiceError) ToGRPCStatus() error {
	return status.Error(e.Code, e.Message)
}

func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrEmptyText        = NewServiceError(codes.InvalidArgument, "task text must not be empty")
	ErrInvalidTimeOfDay = NewServiceError(codes.InvalidArgument, "time must be HH:MM")
	ErrInvalidFilter    = NewServiceError(codes.InvalidArgument, "status must be one of all, incomplete, completed")
	ErrEmptyTaskID      = NewServiceError(codes.InvalidArgument, "task id must not be empty")
	ErrTaskNotFound     = NewServiceError(codes.NotFound, "task not found")
	ErrNotLoaded        = NewServiceError(codes.Unavailable, "tasks are not loaded yet")
	ErrInternalError    = NewServiceError(codes.Internal, "internal server error")
)

// IsInvalidInput reports whether err is a user-correctable input error.
func IsInvalidInput(err error) bool {
	var se *ServiceError
	return stderrors.As(err, &se) && se.Code == codes.InvalidArgument
}

// AsServiceError returns err as a ServiceError, mapping anything unknown to
// ErrInternalError.
func AsServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var se *ServiceError
	if stderrors.As(err, &se) {
		return se
	}
	return ErrInternalError
}
