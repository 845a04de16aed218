package service

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/shelfwise/lending-service/internal/model"
	"github.com/shelfwise/lending-service/internal/payment"
)

// maxLateFee is the largest fee one book can accrue and therefore the sanity
// ceiling on refunds.
var maxLateFee = decimal.NewFromFloat(15.00)

// PaymentService orchestrates late-fee charges and refunds against an
// injected payment gateway. The gateway is a call-time parameter rather than
// a constructor dependency so callers (and tests) can substitute doubles
// without touching the service.
type PaymentService struct {
	books   CatalogStore
	lending *LendingService
}

// NewPaymentService constructs a PaymentService with its dependencies.
func NewPaymentService(books CatalogStore, lending *LendingService) *PaymentService {
	return &PaymentService{books: books, lending: lending}
}

// PayLateFee recomputes the fee owed for the (patron, book) pair and charges
// it through the gateway. The caller never supplies the amount. Gateway
// faults surface as *PaymentProcessingError, never as a panic or a bare
// transport error.
func (s *PaymentService) PayLateFee(ctx context.Context, patronID, bookID string, gateway payment.Gateway) (*model.PaymentReceipt, error) {
	if !validPatronID(patronID) {
		return nil, ErrInvalidPatronID
	}

	fee, err := s.lending.AssessLateFee(ctx, patronID, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "assess late fee")
	}
	if !fee.Amount.IsPositive() {
		return nil, ErrNoFeeOwed
	}

	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "get book for charge description")
	}

	result, err := gateway.Charge(ctx, patronID, fee.Amount, fmt.Sprintf("Late fees for %q", book.Title))
	if err != nil {
		return nil, &PaymentProcessingError{Err: err}
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.Message)
	}

	return &model.PaymentReceipt{
		TransactionID: result.TransactionID,
		Amount:        fee.Amount,
		Message:       result.Message,
	}, nil
}

// RefundLateFee refunds a previous late-fee payment. The amount must be
// positive and no larger than the maximum fee a single book can accrue; the
// transaction ID must carry the gateway's prefix.
func (s *PaymentService) RefundLateFee(ctx context.Context, transactionID string, amount decimal.Decimal, gateway payment.Gateway) (*model.RefundReceipt, error) {
	if !payment.ValidTransactionID(transactionID) {
		return nil, ErrInvalidTransactionID
	}
	if !amount.IsPositive() {
		return nil, ErrRefundAmountNotPositive
	}
	if amount.GreaterThan(maxLateFee) {
		return nil, ErrRefundExceedsMax
	}

	result, err := gateway.Refund(ctx, transactionID, amount)
	if err != nil {
		return nil, &PaymentProcessingError{Err: err}
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrRefundDeclined, result.Message)
	}

	return &model.RefundReceipt{
		TransactionID: transactionID,
		Amount:        amount,
		Message:       result.Message,
	}, nil
}
