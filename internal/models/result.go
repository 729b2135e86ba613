package models

// ResultType tags a Result as success or error.
type ResultType string

const (
	ResultSuccess ResultType = "success"
	ResultError   ResultType = "error"
)

// Result is the uniform outcome of every service-layer operation. Errors
// carry a user-displayable message; nothing is thrown past a service
// boundary on the normal path.
type Result[T any] struct {
	Type    ResultType
	Data    T
	Message string
}

func Ok[T any](data T, message string) Result[T] {
	return Result[T]{Type: ResultSuccess, Data: data, Message: message}
}

func Fail[T any](message string) Result[T] {
	return Result[T]{Type: ResultError, Message: message}
}

// IsError reports whether the result carries an error message.
func (r Result[T]) IsError() bool {
	return r.Type == ResultError
}
