package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/lending-service/internal/model"
)

func newReportService(books *mockCatalogStore, loans *mockLendingStore) *ReportService {
	lending := NewLendingService(books, loans)
	return NewReportService(books, loans, lending)
}

func TestPatronReportInvalidPatronID(t *testing.T) {
	loans := new(mockLendingStore)
	svc := newReportService(new(mockCatalogStore), loans)

	report, err := svc.PatronReport(context.Background(), "12x456")
	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrInvalidPatronID)

	loans.AssertNotCalled(t, "CountOpenLoans", mock.Anything, mock.Anything)
	loans.AssertNotCalled(t, "ListOpenLoans", mock.Anything, mock.Anything)
}

func TestPatronReportNoOpenLoans(t *testing.T) {
	books := new(mockCatalogStore)
	loans := new(mockLendingStore)
	loans.On("CountOpenLoans", mock.Anything, "111111").Return(0, nil)
	loans.On("ListOpenLoans", mock.Anything, "111111").Return([]model.BorrowRecord{}, nil)
	svc := newReportService(books, loans)

	report, err := svc.PatronReport(context.Background(), "111111")
	require.NoError(t, err)
	assert.Equal(t, 0, report.OpenLoanCount)
	assert.Empty(t, report.Loans)
	assert.True(t, report.TotalFees.IsZero())
}

func TestPatronReportAggregatesFees(t *testing.T) {
	now := time.Now().UTC()

	// book-1 is two whole days overdue, book-2 is not yet due.
	overdue := model.BorrowRecord{
		ID: "rec-1", PatronID: "111111", BookID: "book-1",
		BorrowDate: now.Add(-17 * 24 * time.Hour),
		DueDate:    now.Add(-49 * time.Hour),
	}
	current := model.BorrowRecord{
		ID: "rec-2", PatronID: "111111", BookID: "book-2",
		BorrowDate: now.Add(-24 * time.Hour),
		DueDate:    now.Add(13 * 24 * time.Hour),
	}

	books := new(mockCatalogStore)
	loans := new(mockLendingStore)
	books.On("GetByID", mock.Anything, "book-1").Return(&model.Book{ID: "book-1", Title: "Clean Code"}, nil)
	books.On("GetByID", mock.Anything, "book-2").Return(&model.Book{ID: "book-2", Title: "Clean Architecture"}, nil)
	loans.On("CountOpenLoans", mock.Anything, "111111").Return(2, nil)
	loans.On("ListOpenLoans", mock.Anything, "111111").Return([]model.BorrowRecord{overdue, current}, nil)
	loans.On("FindLendingRecord", mock.Anything, "111111", "book-1").Return(&overdue, nil)
	loans.On("FindLendingRecord", mock.Anything, "111111", "book-2").Return(&current, nil)
	svc := newReportService(books, loans)

	report, err := svc.PatronReport(context.Background(), "111111")
	require.NoError(t, err)

	assert.Equal(t, "111111", report.PatronID)
	assert.Equal(t, 2, report.OpenLoanCount)
	require.Len(t, report.Loans, 2)

	assert.Equal(t, "Clean Code", report.Loans[0].Title)
	assert.Equal(t, 2, report.Loans[0].Fee.DaysOverdue)
	assert.Equal(t, model.FeeStatusApplied, report.Loans[0].Fee.Status)

	assert.Equal(t, "Clean Architecture", report.Loans[1].Title)
	assert.Equal(t, 0, report.Loans[1].Fee.DaysOverdue)
	assert.Equal(t, model.FeeStatusNone, report.Loans[1].Fee.Status)

	assert.Equal(t, "1.00", report.TotalFees.StringFixed(2))
}
