package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("NOT FOUND")
	ErrInvalidInput     = errors.New("INVALID INPUT")
	ErrConflict         = errors.New("CONFLICT")
	ErrFetch            = errors.New("FETCH FAILED")
	ErrMutationRejected = errors.New("MUTATION REJECTED")
	ErrInternal         = errors.New("INTERNAL")
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}
