package tools

// Status indicates whether a tool invocation succeeded.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorCode classifies tool failures so the model can decide whether to
// retry, rephrase, or give up.
type ErrorCode string

const (
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeSecurity   ErrorCode = "security"
	ErrCodeNetwork    ErrorCode = "network"
	ErrCodeExecution  ErrorCode = "execution"
	ErrCodeNotFound   ErrorCode = "not_found"
)

// Error is a structured tool failure for model consumption. Tools return it
// inside Result instead of a Go error so the model sees what went wrong and
// can correct its call.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil tool error>"
	}
	if e.Code == "" {
		return e.Message
	}
	return string(e.Code) + ": " + e.Message
}

// Result is the uniform envelope every tool returns to the model.
//
// Tools never propagate failures as Go errors: a failed lookup or upstream
// outage becomes a StatusError Result, the model reads it, and the
// generation loop keeps running. A Go error from a tool would abort the
// whole turn and kill the client stream.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *Error         `json:"error,omitempty"`
}

// errorResult builds a StatusError Result.
func errorResult(code ErrorCode, message string) Result {
	return Result{
		Status:  StatusError,
		Message: message,
		Error:   &Error{Code: code, Message: message},
	}
}
