package model

import (
	"errors"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// Kind classifies domain errors so the transport layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindSignatureInvalid
	KindUnavailable
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidField        = "INVALID_FIELD"
	ErrCodeEmptyOrder          = "EMPTY_ORDER"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeOrderTooLarge       = "ORDER_TOO_LARGE"
	ErrCodeUnknownProduct      = "UNKNOWN_PRODUCT"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidAddress      = "INVALID_ADDRESS"
	ErrCodeAddressNotFound     = "ADDRESS_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeSequenceConflict    = "SEQUENCE_CONFLICT"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeAmountMismatch      = "AMOUNT_MISMATCH"
	ErrCodeAlreadyPaid         = "ALREADY_PAID"
	ErrCodePaymentNotInitiated = "PAYMENT_NOT_INITIATED"
	ErrCodeSignatureInvalid    = "SIGNATURE_INVALID"
	ErrCodeGatewayRejected     = "GATEWAY_REJECTED"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeMissingUser         = "MISSING_USER"
	ErrCodeUnknownUser         = "UNKNOWN_USER"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure carrying its kind and a stable code.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on code so that field-carrying copies still compare equal to
// the sentinel they were derived from.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithFields returns a copy of the error that carries per-field details.
func (e *DomainError) WithFields(fields map[string]string) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Fields:  fields,
	}
}

// NewDomainError creates a new domain error
func NewDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// KindOf reports the kind of the first DomainError in err's chain.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Common domain errors
var (
	ErrEmptyOrder          = NewDomainError(KindValidation, ErrCodeEmptyOrder, "Order must contain at least one item")
	ErrEmptyCart           = NewDomainError(KindValidation, ErrCodeEmptyCart, "Cart is empty")
	ErrInvalidQuantity     = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be a positive whole number within range")
	ErrOrderTooLarge       = NewDomainError(KindValidation, ErrCodeOrderTooLarge, "Order total exceeds the maximum allowed")
	ErrMissingField        = NewDomainError(KindValidation, ErrCodeMissingField, "One or more required fields are missing")
	ErrInvalidField        = NewDomainError(KindValidation, ErrCodeInvalidField, "One or more fields are invalid")
	ErrUnknownProduct      = NewDomainError(KindValidation, ErrCodeUnknownProduct, "One or more products do not exist")
	ErrInvalidAddress      = NewDomainError(KindValidation, ErrCodeInvalidAddress, "Address does not exist")
	ErrInvalidAmount       = NewDomainError(KindValidation, ErrCodeInvalidAmount, "Amount must be a positive integer in minor currency units")
	ErrAmountMismatch      = NewDomainError(KindValidation, ErrCodeAmountMismatch, "Amount does not match the order total")
	ErrPaymentNotInitiated = NewDomainError(KindValidation, ErrCodePaymentNotInitiated, "Payment has not been initiated for this order")
	ErrGatewayRejected     = NewDomainError(KindValidation, ErrCodeGatewayRejected, "Payment gateway rejected the request")

	ErrProductNotFound = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrAddressNotFound = NewDomainError(KindNotFound, ErrCodeAddressNotFound, "Address not found")
	ErrOrderNotFound   = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUnknownUser     = NewDomainError(KindNotFound, ErrCodeUnknownUser, "User does not exist")

	ErrSequenceConflict = NewDomainError(KindConflict, ErrCodeSequenceConflict, "Order number could not be assigned, retry the checkout")
	ErrAlreadyPaid      = NewDomainError(KindConflict, ErrCodeAlreadyPaid, "Order is already paid")

	ErrSignatureInvalid = NewDomainError(KindSignatureInvalid, ErrCodeSignatureInvalid, "Payment signature verification failed")

	ErrGatewayUnavailable = NewDomainError(KindUnavailable, ErrCodeGatewayUnavailable, "Payment gateway is unavailable")
)
