package service

import (
	"errors"
	"fmt"
)

// ErrInvalidPatronID is returned when a patron ID is not exactly 6 digits.
var ErrInvalidPatronID = errors.New("invalid patron ID, must be exactly 6 digits")

// ErrNoFeeOwed is returned when a payment is requested but no fee is due.
var ErrNoFeeOwed = errors.New("no late fees to pay for this book")

// ErrInvalidTransactionID is returned when a refund references an ID that
// was not issued by the gateway.
var ErrInvalidTransactionID = errors.New("invalid transaction ID")

// ErrRefundAmountNotPositive is returned for zero or negative refunds.
var ErrRefundAmountNotPositive = errors.New("refund amount must be greater than 0")

// ErrRefundExceedsMax is returned when a refund exceeds the maximum late fee
// a single book can accrue.
var ErrRefundExceedsMax = errors.New("refund amount exceeds maximum late fee")

// ErrPaymentDeclined is returned when the gateway processed a charge but
// declined it.
var ErrPaymentDeclined = errors.New("payment declined")

// ErrRefundDeclined is returned when the gateway processed a refund but
// declined it.
var ErrRefundDeclined = errors.New("refund declined")

// ValidationError reports malformed caller input. Handlers map it to a 400
// response; its message is safe to echo back to the client, unlike wrapped
// store or gateway failures.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// PaymentProcessingError wraps an unexpected gateway fault (network error,
// timeout). It is never allowed to escape as a bare gateway error so callers
// can tell adapter faults from business rejections.
type PaymentProcessingError struct {
	Err error
}

func (e *PaymentProcessingError) Error() string {
	return "payment processing error: " + e.Err.Error()
}

func (e *PaymentProcessingError) Unwrap() error {
	return e.Err
}
