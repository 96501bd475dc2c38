package serrors

import "fmt"

// ServiceError is the two-case outcome carrier for lifecycle services:
// success returns a value, failure returns a *ServiceError. The Status field
// is the HTTP status the presentation layer should respond with; services
// never write HTTP themselves.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func NewServiceError(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

func NotFound(code, message string, cause error) *ServiceError {
	return NewServiceError(404, code, message, cause)
}

func Validation(code, message string) *ServiceError {
	return NewServiceError(400, code, message, nil)
}

func Conflict(code, message string, cause error) *ServiceError {
	return NewServiceError(409, code, message, cause)
}

func Forbidden(message string) *ServiceError {
	return NewServiceError(403, "FORBIDDEN", message, nil)
}

func Unauthorized(message string) *ServiceError {
	return NewServiceError(401, "UNAUTHORIZED", message, nil)
}

func Internal(message string, cause error) *ServiceError {
	return NewServiceError(500, "INTERNAL", message, cause)
}
