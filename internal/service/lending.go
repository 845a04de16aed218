package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shelfwise/lending-service/internal/model"
	"github.com/shelfwise/lending-service/internal/repository"
)

// loanPeriod is how long a loan runs before fees accrue.
const loanPeriod = model.LoanPeriodDays * 24 * time.Hour

// perDayLateFee is the flat rate charged per whole day overdue.
var perDayLateFee = decimal.NewFromFloat(0.50)

// LendingService is the lending engine: it validates borrow and return
// requests, enforces the borrowing limit, and computes late fees.
type LendingService struct {
	books CatalogStore
	loans LendingStore
}

// NewLendingService constructs a LendingService with its dependencies.
func NewLendingService(books CatalogStore, loans LendingStore) *LendingService {
	return &LendingService{books: books, loans: loans}
}

// Borrow lends a book to a patron. The due date is fixed at borrow time and
// never recalculated. All stock and limit checks run inside the store's
// borrow transaction so concurrent borrowers cannot oversubscribe a book.
func (s *LendingService) Borrow(ctx context.Context, patronID, bookID string) (*model.BorrowRecord, error) {
	if !validPatronID(patronID) {
		return nil, ErrInvalidPatronID
	}

	now := time.Now().UTC()
	record, err := s.loans.Borrow(ctx, patronID, bookID, now, now.Add(loanPeriod))
	if err != nil {
		// Surface domain errors directly so handlers can set correct HTTP status.
		if errors.Is(err, repository.ErrBookNotFound) ||
			errors.Is(err, repository.ErrBookUnavailable) ||
			errors.Is(err, repository.ErrBorrowLimitExceeded) ||
			errors.Is(err, repository.ErrAlreadyBorrowed) {
			return nil, err
		}
		return nil, fmt.Errorf("borrow book: %w", err)
	}
	return record, nil
}

// Return closes the patron's open loan for the book. Returning a book that
// was never borrowed, or returning it twice, fails with
// repository.ErrNotBorrowed and leaves availability untouched.
func (s *LendingService) Return(ctx context.Context, patronID, bookID string) (*model.BorrowRecord, error) {
	if !validPatronID(patronID) {
		return nil, ErrInvalidPatronID
	}

	record, err := s.loans.Return(ctx, patronID, bookID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) ||
			errors.Is(err, repository.ErrNotBorrowed) {
			return nil, err
		}
		return nil, fmt.Errorf("return book: %w", err)
	}
	return record, nil
}

// AssessLateFee computes the late fee for the patron's most relevant borrow
// record: the open one if it exists, otherwise the most recently closed one.
// It is a pure read; calling it never mutates the record, and calling it
// twice on a closed record yields identical output.
func (s *LendingService) AssessLateFee(ctx context.Context, patronID, bookID string) (model.FeeAssessment, error) {
	invalid := model.FeeAssessment{Amount: decimal.Zero, Status: model.FeeStatusInvalid}

	if !validPatronID(patronID) {
		return invalid, nil
	}

	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return invalid, nil
		}
		return invalid, fmt.Errorf("get book: %w", err)
	}

	record, err := s.loans.FindLendingRecord(ctx, patronID, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotBorrowed) {
			return invalid, nil
		}
		return invalid, fmt.Errorf("find borrow record: %w", err)
	}

	settlement := time.Now().UTC()
	if record.ReturnDate != nil {
		settlement = *record.ReturnDate
	}

	days := wholeDaysOverdue(record.DueDate, settlement)
	assessment := model.FeeAssessment{
		Amount:      perDayLateFee.Mul(decimal.NewFromInt(int64(days))).Round(2),
		DaysOverdue: days,
		Status:      model.FeeStatusNone,
	}
	if days > 0 {
		assessment.Status = model.FeeStatusApplied
	}
	return assessment, nil
}

// wholeDaysOverdue returns the number of whole days between due and the
// settlement point, never negative.
func wholeDaysOverdue(due, settlement time.Time) int {
	overdue := settlement.Sub(due)
	if overdue <= 0 {
		return 0
	}
	return int(overdue / (24 * time.Hour))
}

// validPatronID reports whether id is a well-formed 6-digit library card ID.
func validPatronID(id string) bool {
	return len(id) == 6 && isDigits(id)
}
