package service

import (
	"context"
	"time"

	"github.com/shelfwise/lending-service/internal/model"
)

// CatalogStore is the persistence contract for catalog entries. It is
// satisfied by repository.BookRepository and by test doubles.
type CatalogStore interface {
	Create(ctx context.Context, req model.AddBookRequest) (*model.Book, error)
	GetByID(ctx context.Context, id string) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
}

// LendingStore is the persistence contract for borrow records and the
// availability counters they move. Borrow and Return are atomic: either both
// the record and the counter change, or neither does.
type LendingStore interface {
	Borrow(ctx context.Context, patronID, bookID string, borrowDate, dueDate time.Time) (*model.BorrowRecord, error)
	Return(ctx context.Context, patronID, bookID string, returnDate time.Time) (*model.BorrowRecord, error)
	FindLendingRecord(ctx context.Context, patronID, bookID string) (*model.BorrowRecord, error)
	CountOpenLoans(ctx context.Context, patronID string) (int, error)
	ListOpenLoans(ctx context.Context, patronID string) ([]model.BorrowRecord, error)
}
