// Package model defines the core domain types for the library lending system.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lending policy applied by the lending engine.
const (
	// LoanPeriodDays is how long a patron may keep a book before fees accrue.
	LoanPeriodDays = 14
	// MaxOpenLoans is the number of concurrently open loans a patron may hold.
	MaxOpenLoans = 5
)

// Book represents a catalogued title with its copy counters.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
}

// Available returns true when at least one copy can be borrowed.
func (b *Book) Available() bool {
	return b.AvailableCopies > 0
}

// BorrowRecord represents a single loan of a book to a patron.
// ReturnDate is nil while the loan is open and set exactly once on return.
type BorrowRecord struct {
	ID         string     `json:"id"`
	PatronID   string     `json:"patron_id"`
	BookID     string     `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// Open returns true while the book has not been returned.
func (r *BorrowRecord) Open() bool {
	return r.ReturnDate == nil
}

// FeeStatus classifies the outcome of a late-fee assessment.
type FeeStatus string

const (
	FeeStatusNone    FeeStatus = "No late fee"
	FeeStatusApplied FeeStatus = "Late fee applied"
	FeeStatusInvalid FeeStatus = "Invalid"
)

// FeeAssessment is the computed late fee for one borrow record.
// It is derived on demand and never persisted.
type FeeAssessment struct {
	Amount      decimal.Decimal `json:"amount"`
	DaysOverdue int             `json:"days_overdue"`
	Status      FeeStatus       `json:"status"`
}

// PaymentReceipt summarises a successful gateway charge.
type PaymentReceipt struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
}

// RefundReceipt summarises a successful gateway refund.
type RefundReceipt struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
}

// PatronLoan is one open loan inside a patron status report.
type PatronLoan struct {
	BookID  string        `json:"book_id"`
	Title   string        `json:"title"`
	DueDate time.Time     `json:"due_date"`
	Fee     FeeAssessment `json:"fee"`
}

// PatronReport aggregates a patron's open loans and outstanding fees.
type PatronReport struct {
	PatronID      string          `json:"patron_id"`
	OpenLoanCount int             `json:"open_loan_count"`
	Loans         []PatronLoan    `json:"loans"`
	TotalFees     decimal.Decimal `json:"total_fees"`
}

// AddBookRequest is the payload for adding a book to the catalog.
type AddBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	TotalCopies int    `json:"total_copies"`
}

// LoanRequest is the payload for borrowing or returning a book.
type LoanRequest struct {
	PatronID string `json:"patron_id"`
}

// RefundRequest is the payload for refunding a late-fee payment.
type RefundRequest struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
