package httpdto

import "net/http"

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

// ValidationErrorResponse is the fixed envelope for metadata validation
// failures. The message value is a stable key, not display text.
type ValidationErrorResponse struct {
	Error      string            `json:"error"`
	Message    map[string]string `json:"message"`
	StatusCode int               `json:"statusCode"`
}

func NewValidationErrorResponse(key string) ValidationErrorResponse {
	return ValidationErrorResponse{
		Error:      http.StatusText(http.StatusUnprocessableEntity),
		Message:    map[string]string{"metadata": key},
		StatusCode: http.StatusUnprocessableEntity,
	}
}
