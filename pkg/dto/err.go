package dto

import "time"

type ErrorResponse struct {
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

func NewErr(msg string) ErrorResponse {
	return ErrorResponse{
		Message: msg,
		Time:    time.Now(),
	}
}

func NewCodedErr(code, msg string) ErrorResponse {
	e := NewErr(msg)
	e.Code = code
	return e
}
