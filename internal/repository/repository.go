// Package repository implements all database queries for the library lending
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/lending-service/internal/model"
)

// ErrBookNotFound is returned when a requested book does not exist.
var ErrBookNotFound = errors.New("book not found")

// ErrDuplicateISBN is returned when a book with the same ISBN already exists.
var ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

// ErrBookUnavailable is returned when a book has no available copies.
var ErrBookUnavailable = errors.New("this book is currently not available")

// ErrBorrowLimitExceeded is returned when a patron holds the maximum number
// of open loans.
var ErrBorrowLimitExceeded = errors.New("maximum borrowing limit reached")

// ErrAlreadyBorrowed is returned when the patron already holds an open loan
// for the same book.
var ErrAlreadyBorrowed = errors.New("patron already has this book on loan")

// ErrNotBorrowed is returned when no open loan exists for the (patron, book)
// pair being returned.
var ErrNotBorrowed = errors.New("no open loan for this patron and book")

const borrowRecordColumns = `id, patron_id, book_id, borrow_date, due_date, return_date`

// BookRepository handles persistence for catalog entries.
type BookRepository struct {
	db *pgxpool.Pool
}

// NewBookRepository constructs a BookRepository.
func NewBookRepository(db *pgxpool.Pool) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book with all copies available and returns it with a
// generated UUID.
func (r *BookRepository) Create(ctx context.Context, req model.AddBookRequest) (*model.Book, error) {
	book := &model.Book{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO books (id, title, author, isbn, total_copies, available_copies, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		book.ID, book.Title, book.Author, book.ISBN, book.TotalCopies, book.AvailableCopies, book.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return book, nil
}

// GetByID returns a single book or ErrBookNotFound.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	err := r.db.QueryRow(ctx,
		`SELECT id, title, author, isbn, total_copies, available_copies, created_at
		 FROM books WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

// GetByISBN returns a single book by its ISBN or ErrBookNotFound.
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	var b model.Book
	err := r.db.QueryRow(ctx,
		`SELECT id, title, author, isbn, total_copies, available_copies, created_at
		 FROM books WHERE isbn = $1`,
		isbn,
	).Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book by isbn: %w", err)
	}
	return &b, nil
}

// List returns all books ordered by creation time descending.
func (r *BookRepository) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, author, isbn, total_copies, available_copies, created_at
		 FROM books
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// LendingRepository handles persistence for borrow records and the
// availability counters they move.
type LendingRepository struct {
	db *pgxpool.Pool
}

// NewLendingRepository constructs a LendingRepository.
func NewLendingRepository(db *pgxpool.Pool) *LendingRepository {
	return &LendingRepository{db: db}
}

// Borrow creates a borrow record and decrements the book's availability as a
// single transaction.
//
// The book row is locked with SELECT … FOR UPDATE before any check runs, so
// two concurrent borrowers of the last copy cannot both observe
// available_copies > 0: the second transaction blocks on the lock and sees
// the decremented counter once the first commits. Checks run in precondition
// order (exists, available, limit, duplicate) so the first failure wins, and
// a failure at any step rolls the whole transaction back.
func (r *LendingRepository) Borrow(ctx context.Context, patronID, bookID string, borrowDate, dueDate time.Time) (*model.BorrowRecord, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// Ensure the transaction is always resolved.
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var available int
	err = tx.QueryRow(ctx,
		`SELECT available_copies
		 FROM books
		 WHERE id = $1
		 FOR UPDATE`,
		bookID,
	).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("lock book row: %w", err)
	}

	if available <= 0 {
		err = ErrBookUnavailable
		return nil, err
	}

	var openLoans int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE patron_id = $1 AND return_date IS NULL`,
		patronID,
	).Scan(&openLoans)
	if err != nil {
		return nil, fmt.Errorf("count open loans: %w", err)
	}
	if openLoans >= model.MaxOpenLoans {
		err = ErrBorrowLimitExceeded
		return nil, err
	}

	var dupCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records
		 WHERE patron_id = $1 AND book_id = $2 AND return_date IS NULL`,
		patronID, bookID,
	).Scan(&dupCount)
	if err != nil {
		return nil, fmt.Errorf("check open loan: %w", err)
	}
	if dupCount > 0 {
		err = ErrAlreadyBorrowed
		return nil, err
	}

	record := &model.BorrowRecord{
		ID:         uuid.New().String(),
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO borrow_records (id, patron_id, book_id, borrow_date, due_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.PatronID, record.BookID, record.BorrowDate, record.DueDate,
	)
	if err != nil {
		return nil, fmt.Errorf("insert borrow record: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE books SET available_copies = available_copies - 1 WHERE id = $1`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("decrement available copies: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return record, nil
}

// Return closes the open borrow record for the (patron, book) pair and
// increments the book's availability as a single transaction.
//
// Closing the record is the linchpin: the UPDATE matches only a record with
// return_date IS NULL, so a second return of the same loan finds no row and
// fails with ErrNotBorrowed before availability is touched. A double return
// can therefore never double-increment the counter.
func (r *LendingRepository) Return(ctx context.Context, patronID, bookID string, returnDate time.Time) (*model.BorrowRecord, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var lockedID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM books WHERE id = $1 FOR UPDATE`,
		bookID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("lock book row: %w", err)
	}

	record := &model.BorrowRecord{}
	err = tx.QueryRow(ctx,
		`UPDATE borrow_records
		 SET return_date = $3
		 WHERE patron_id = $1 AND book_id = $2 AND return_date IS NULL
		 RETURNING `+borrowRecordColumns,
		patronID, bookID, returnDate,
	).Scan(&record.ID, &record.PatronID, &record.BookID, &record.BorrowDate, &record.DueDate, &record.ReturnDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotBorrowed
		}
		return nil, fmt.Errorf("close borrow record: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE books SET available_copies = available_copies + 1 WHERE id = $1`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("increment available copies: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return record, nil
}

// FindLendingRecord returns the most relevant borrow record for the pair:
// the open record if one exists, otherwise the most recently closed one.
// It is a plain read and never mutates anything.
func (r *LendingRepository) FindLendingRecord(ctx context.Context, patronID, bookID string) (*model.BorrowRecord, error) {
	record := &model.BorrowRecord{}
	err := r.db.QueryRow(ctx,
		`SELECT `+borrowRecordColumns+`
		 FROM borrow_records
		 WHERE patron_id = $1 AND book_id = $2
		 ORDER BY (return_date IS NULL) DESC, return_date DESC
		 LIMIT 1`,
		patronID, bookID,
	).Scan(&record.ID, &record.PatronID, &record.BookID, &record.BorrowDate, &record.DueDate, &record.ReturnDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotBorrowed
		}
		return nil, fmt.Errorf("find borrow record: %w", err)
	}
	return record, nil
}

// CountOpenLoans returns the number of loans the patron currently holds.
func (r *LendingRepository) CountOpenLoans(ctx context.Context, patronID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE patron_id = $1 AND return_date IS NULL`,
		patronID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open loans: %w", err)
	}
	return count, nil
}

// ListOpenLoans returns the patron's open borrow records, oldest first.
func (r *LendingRepository) ListOpenLoans(ctx context.Context, patronID string) ([]model.BorrowRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+borrowRecordColumns+`
		 FROM borrow_records
		 WHERE patron_id = $1 AND return_date IS NULL
		 ORDER BY borrow_date ASC`,
		patronID,
	)
	if err != nil {
		return nil, fmt.Errorf("list open loans: %w", err)
	}
	defer rows.Close()

	var records []model.BorrowRecord
	for rows.Next() {
		var rec model.BorrowRecord
		if err := rows.Scan(&rec.ID, &rec.PatronID, &rec.BookID, &rec.BorrowDate, &rec.DueDate, &rec.ReturnDate); err != nil {
			return nil, fmt.Errorf("scan borrow record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
