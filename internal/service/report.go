package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shelfwise/lending-service/internal/model"
)

// ReportService assembles patron status reports by driving the lending
// engine once per open loan.
type ReportService struct {
	books   CatalogStore
	loans   LendingStore
	lending *LendingService
}

// NewReportService constructs a ReportService with its dependencies.
func NewReportService(books CatalogStore, loans LendingStore, lending *LendingService) *ReportService {
	return &ReportService{books: books, loans: loans, lending: lending}
}

// PatronReport returns the patron's open loans with a fee assessment per
// book and the total owed.
func (s *ReportService) PatronReport(ctx context.Context, patronID string) (*model.PatronReport, error) {
	if !validPatronID(patronID) {
		return nil, ErrInvalidPatronID
	}

	count, err := s.loans.CountOpenLoans(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("count open loans: %w", err)
	}

	records, err := s.loans.ListOpenLoans(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("list open loans: %w", err)
	}

	loans := make([]model.PatronLoan, 0, len(records))
	total := decimal.Zero
	for _, rec := range records {
		book, err := s.books.GetByID(ctx, rec.BookID)
		if err != nil {
			return nil, fmt.Errorf("get book %s: %w", rec.BookID, err)
		}
		fee, err := s.lending.AssessLateFee(ctx, patronID, rec.BookID)
		if err != nil {
			return nil, fmt.Errorf("assess fee for book %s: %w", rec.BookID, err)
		}
		loans = append(loans, model.PatronLoan{
			BookID:  rec.BookID,
			Title:   book.Title,
			DueDate: rec.DueDate,
			Fee:     fee,
		})
		total = total.Add(fee.Amount)
	}

	return &model.PatronReport{
		PatronID:      patronID,
		OpenLoanCount: count,
		Loans:         loans,
		TotalFees:     total.Round(2),
	}, nil
}
