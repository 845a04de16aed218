// Package payment defines the boundary to the external payment gateway and a
// simulated implementation for local development.
package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionIDPrefix marks every transaction ID issued by the gateway.
// IDs are otherwise opaque strings.
const TransactionIDPrefix = "txn_"

// ValidTransactionID reports whether id looks like a gateway-issued
// transaction ID.
func ValidTransactionID(id string) bool {
	return strings.HasPrefix(id, TransactionIDPrefix) && len(id) > len(TransactionIDPrefix)
}

// ChargeResult is the gateway's answer to a charge attempt. Success false
// means the charge was processed but declined; transport faults are reported
// as errors instead.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Message       string
}

// RefundResult is the gateway's answer to a refund attempt.
type RefundResult struct {
	Success bool
	Message string
}

// Gateway charges and refunds late fees through a third-party processor.
// It is injected at call time so tests can substitute a double.
type Gateway interface {
	Charge(ctx context.Context, patronID string, amount decimal.Decimal, description string) (ChargeResult, error)
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (RefundResult, error)
}

// SimulatedGateway approves every well-formed request. It stands in for a
// real processor in local development and demos.
type SimulatedGateway struct{}

// NewSimulatedGateway constructs a SimulatedGateway.
func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{}
}

// Charge approves the charge and issues a fresh transaction ID.
func (g *SimulatedGateway) Charge(_ context.Context, _ string, amount decimal.Decimal, description string) (ChargeResult, error) {
	return ChargeResult{
		Success:       true,
		TransactionID: TransactionIDPrefix + uuid.New().String(),
		Message:       "Charged " + amount.StringFixed(2) + " for " + description,
	}, nil
}

// Refund approves the refund for any known-looking transaction ID.
func (g *SimulatedGateway) Refund(_ context.Context, transactionID string, amount decimal.Decimal) (RefundResult, error) {
	if !ValidTransactionID(transactionID) {
		return RefundResult{Success: false, Message: "unknown transaction"}, nil
	}
	return RefundResult{
		Success: true,
		Message: "Refunded " + amount.StringFixed(2) + " for " + transactionID,
	}, nil
}
