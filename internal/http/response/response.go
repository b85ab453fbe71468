// Package response holds the JSON envelopes returned by HTTP handlers.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Messages shared by several handlers.
const (
	MsgInternalError  = "Internal server error"
	MsgInvalidBody    = "Invalid request body"
	MsgNotFound       = "Endpoint not found"
	MsgPanic          = "Something went wrong!"
	MsgSlotTaken      = "Time slot unavailable"
	MsgNoToken        = "Unauthorized: No token provided"
	MsgInvalidToken   = "Unauthorized: Invalid token"
	MsgTooManyRequest = "Too many requests"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error" example:"Internal server error"`
}

// MsgResponse is the body of a slot conflict.
type MsgResponse struct {
	Msg string `json:"msg" example:"Time slot unavailable"`
}

// Error wraps msg into an ErrorResponse.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// Msg wraps msg into a MsgResponse.
func Msg(msg string) MsgResponse {
	return MsgResponse{Msg: msg}
}

// ValidationError renders each violation as readable text joined with commas.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return ErrorResponse{Error: strings.Join(msgs, ", ")}
}
