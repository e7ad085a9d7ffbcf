package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"petshop/internal/pricing"
	"petshop/internal/validator"
)

// HTTPError carries the status the handler should answer with.
type HTTPError struct {
	Status  int
	Message string
	// Fields is set for form validation failures.
	Fields validator.Errors
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// validationError wraps the output of a validator chain as a 400.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fields validator.Errors
	if errors.As(err, &fields) {
		return &HTTPError{Status: http.StatusBadRequest, Message: "validation error", Fields: fields}
	}
	return NewHTTPError(http.StatusBadRequest, err.Error())
}

// pricingError maps engine errors onto HTTP errors.
func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, pricing.ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, pricing.ErrInsufficientStock):
		return NewHTTPError(http.StatusConflict, "insufficient stock")
	default:
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
}
