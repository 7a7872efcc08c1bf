// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. Ledger-specific codes mirror the error kinds of the core.
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation        = "VALIDATION_ERROR"
	CodeMalformedQuantity = "MALFORMED_QUANTITY"

	// Missing references (404)
	CodeNotFound         = "NOT_FOUND"
	CodeProductNotFound  = "PRODUCT_NOT_FOUND"
	CodeSupplierNotFound = "SUPPLIER_NOT_FOUND"
	CodeCustomerNotFound = "CUSTOMER_NOT_FOUND"

	// Business rule violations (422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeUnitIncompatible       = "UNIT_INCOMPATIBLE"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeRefundExceedsOriginal  = "REFUND_EXCEEDS_ORIGINAL"
	CodeDivisionByZeroQuantity = "DIVISION_BY_ZERO_QUANTITY"
	CodeKhaataAlreadyCleared   = "KHAATA_ALREADY_CLEARED"
	CodeOverpaymentRejected    = "OVERPAYMENT_REJECTED"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Conflict (409)
	CodeConflict               = "CONFLICT"
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// Class tells the caller whether retrying with different input can help
// (client input) or whether the current state of a ledger forbids the operation.
type Class string

const (
	ClassClientInput   Class = "client_input"
	ClassStateConflict Class = "state_conflict"
	ClassInternal      Class = "internal"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Class is the failure classification
	Class Class `json:"class"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(code string, class Class, status int, message string) *AppError {
	return &AppError{
		Code:       code,
		Class:      class,
		Message:    message,
		HTTPStatus: status,
	}
}

// --- Generic factories ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return newError(CodeValidation, ClassClientInput, http.StatusBadRequest, message)
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, ClassClientInput, http.StatusNotFound, fmt.Sprintf("%s not found", entity)).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return newError(code, ClassStateConflict, http.StatusUnprocessableEntity, message)
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return newError(CodeConcurrentModification, ClassStateConflict, http.StatusConflict,
		"Record was modified by another user. Please refresh and try again.").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	e := newError(CodeInternal, ClassInternal, http.StatusInternalServerError, "Internal server error")
	e.Err = err
	return e
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, ClassClientInput, http.StatusUnauthorized, message)
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, ClassClientInput, http.StatusForbidden, message)
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return newError(CodeConflict, ClassStateConflict, http.StatusConflict, message)
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, ClassStateConflict, http.StatusConflict,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// --- Ledger factories ---

// NewMalformedQuantity rejects a quantity that is neither base units nor "W.R".
func NewMalformedQuantity(input string, reason string) *AppError {
	return newError(CodeMalformedQuantity, ClassClientInput, http.StatusBadRequest,
		fmt.Sprintf("Malformed quantity %q: %s", input, reason)).
		WithDetail("input", input)
}

// NewProductNotFound creates a missing product error.
func NewProductNotFound(productID any) *AppError {
	return newError(CodeProductNotFound, ClassClientInput, http.StatusNotFound, "Product does not exist").
		WithDetail("product_id", productID)
}

// NewSupplierNotFound creates a missing supplier error.
func NewSupplierNotFound(supplierID any) *AppError {
	return newError(CodeSupplierNotFound, ClassClientInput, http.StatusNotFound, "Supplier does not exist").
		WithDetail("supplier_id", supplierID)
}

// NewCustomerNotFound creates a missing customer error.
func NewCustomerNotFound(customerID any) *AppError {
	return newError(CodeCustomerNotFound, ClassClientInput, http.StatusNotFound, "Customer does not exist").
		WithDetail("customer_id", customerID)
}

// NewUnitIncompatible reports a unit whose category differs from the product's.
func NewUnitIncompatible(unitID, categoryID any) *AppError {
	return newError(CodeUnitIncompatible, ClassClientInput, http.StatusUnprocessableEntity, "Unit not compatible").
		WithDetail("unit_id", unitID).
		WithDetail("category_id", categoryID)
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available int64) *AppError {
	return newError(CodeInsufficientStock, ClassStateConflict, http.StatusUnprocessableEntity, "Insufficient stock").
		WithDetail("product_id", productID).
		WithDetail("requested", requested).
		WithDetail("available", available)
}

// NewRefundExceedsOriginal rejects a refund larger than what the line holds.
func NewRefundExceedsOriginal(what string) *AppError {
	return newError(CodeRefundExceedsOriginal, ClassStateConflict, http.StatusUnprocessableEntity,
		fmt.Sprintf("Cannot refund more than initial %s", what))
}

// NewDivisionByZeroQuantity rejects a refund against a line with no quantity.
func NewDivisionByZeroQuantity(productID any) *AppError {
	return newError(CodeDivisionByZeroQuantity, ClassStateConflict, http.StatusUnprocessableEntity,
		"Line has zero quantity, price per unit is undefined").
		WithDetail("product_id", productID)
}

// NewKhaataAlreadyCleared rejects a payment against a settled record.
func NewKhaataAlreadyCleared() *AppError {
	return newError(CodeKhaataAlreadyCleared, ClassStateConflict, http.StatusUnprocessableEntity,
		"Khaata is already cleared")
}

// NewOverpaymentRejected rejects a payment that would exceed the total.
func NewOverpaymentRejected(remaining fmt.Stringer) *AppError {
	return newError(CodeOverpaymentRejected, ClassStateConflict, http.StatusUnprocessableEntity,
		fmt.Sprintf("Cannot clear khaata more than remaining. Only %s remaining.", remaining)).
		WithDetail("remaining", remaining.String())
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return HasCode(err, CodeConcurrentModification)
}
