package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/shelfwise/lending-service/internal/model"
	"github.com/shelfwise/lending-service/internal/payment"
)

type mockCatalogStore struct {
	mock.Mock
}

func (m *mockCatalogStore) Create(ctx context.Context, req model.AddBookRequest) (*model.Book, error) {
	args := m.Called(ctx, req)
	var book *model.Book
	if args.Get(0) != nil {
		book = args.Get(0).(*model.Book)
	}
	return book, args.Error(1)
}

func (m *mockCatalogStore) GetByID(ctx context.Context, id string) (*model.Book, error) {
	args := m.Called(ctx, id)
	var book *model.Book
	if args.Get(0) != nil {
		book = args.Get(0).(*model.Book)
	}
	return book, args.Error(1)
}

func (m *mockCatalogStore) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	args := m.Called(ctx, isbn)
	var book *model.Book
	if args.Get(0) != nil {
		book = args.Get(0).(*model.Book)
	}
	return book, args.Error(1)
}

func (m *mockCatalogStore) List(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	var books []model.Book
	if args.Get(0) != nil {
		books = args.Get(0).([]model.Book)
	}
	return books, args.Error(1)
}

type mockLendingStore struct {
	mock.Mock
}

func (m *mockLendingStore) Borrow(ctx context.Context, patronID, bookID string, borrowDate, dueDate time.Time) (*model.BorrowRecord, error) {
	args := m.Called(ctx, patronID, bookID, borrowDate, dueDate)
	var record *model.BorrowRecord
	if args.Get(0) != nil {
		record = args.Get(0).(*model.BorrowRecord)
	}
	return record, args.Error(1)
}

func (m *mockLendingStore) Return(ctx context.Context, patronID, bookID string, returnDate time.Time) (*model.BorrowRecord, error) {
	args := m.Called(ctx, patronID, bookID, returnDate)
	var record *model.BorrowRecord
	if args.Get(0) != nil {
		record = args.Get(0).(*model.BorrowRecord)
	}
	return record, args.Error(1)
}

func (m *mockLendingStore) FindLendingRecord(ctx context.Context, patronID, bookID string) (*model.BorrowRecord, error) {
	args := m.Called(ctx, patronID, bookID)
	var record *model.BorrowRecord
	if args.Get(0) != nil {
		record = args.Get(0).(*model.BorrowRecord)
	}
	return record, args.Error(1)
}

func (m *mockLendingStore) CountOpenLoans(ctx context.Context, patronID string) (int, error) {
	args := m.Called(ctx, patronID)
	return args.Int(0), args.Error(1)
}

func (m *mockLendingStore) ListOpenLoans(ctx context.Context, patronID string) ([]model.BorrowRecord, error) {
	args := m.Called(ctx, patronID)
	var records []model.BorrowRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]model.BorrowRecord)
	}
	return records, args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Charge(ctx context.Context, patronID string, amount decimal.Decimal, description string) (payment.ChargeResult, error) {
	args := m.Called(ctx, patronID, amount, description)
	return args.Get(0).(payment.ChargeResult), args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (payment.RefundResult, error) {
	args := m.Called(ctx, transactionID, amount)
	return args.Get(0).(payment.RefundResult), args.Error(1)
}

// decimalEqual matches a decimal argument by value rather than representation.
func decimalEqual(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}
