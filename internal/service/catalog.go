// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shelfwise/lending-service/internal/model"
	"github.com/shelfwise/lending-service/internal/repository"
)

// Search types accepted by SearchBooks.
const (
	SearchByTitle  = "title"
	SearchByAuthor = "author"
	SearchByISBN   = "isbn"
)

// CatalogService handles adding books and searching the catalog.
type CatalogService struct {
	books CatalogStore
}

// NewCatalogService constructs a CatalogService with its dependencies.
func NewCatalogService(books CatalogStore) *CatalogService {
	return &CatalogService{books: books}
}

// AddBook validates the request and creates the book with all copies
// available.
func (s *CatalogService) AddBook(ctx context.Context, req model.AddBookRequest) (*model.Book, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, validationErrorf("title is required")
	}
	if len(req.Title) > 200 {
		return nil, validationErrorf("title must be less than 200 characters")
	}
	req.Author = strings.TrimSpace(req.Author)
	if req.Author == "" {
		return nil, validationErrorf("author is required")
	}
	if len(req.Author) > 100 {
		return nil, validationErrorf("author must be less than 100 characters")
	}
	if len(req.ISBN) != 13 || !isDigits(req.ISBN) {
		return nil, validationErrorf("ISBN must be exactly 13 digits")
	}
	if req.TotalCopies <= 0 {
		return nil, validationErrorf("total copies must be a positive integer")
	}

	book, err := s.books.Create(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateISBN) {
			return nil, err
		}
		return nil, fmt.Errorf("add book: %w", err)
	}
	return book, nil
}

// GetBook returns a single book by ID.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	if id == "" {
		return nil, validationErrorf("book id is required")
	}
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks returns the whole catalog.
func (s *CatalogService) ListBooks(ctx context.Context) ([]model.Book, error) {
	return s.books.List(ctx)
}

// SearchBooks returns catalog entries whose title, author, or ISBN contains
// the search term, case-insensitively.
func (s *CatalogService) SearchBooks(ctx context.Context, term, searchType string) ([]model.Book, error) {
	switch searchType {
	case SearchByTitle, SearchByAuthor, SearchByISBN:
	default:
		return nil, validationErrorf("search type must be one of title, author, isbn")
	}
	term = strings.ToLower(strings.TrimSpace(term))

	books, err := s.books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	results := []model.Book{}
	for _, b := range books {
		var field string
		switch searchType {
		case SearchByTitle:
			field = b.Title
		case SearchByAuthor:
			field = b.Author
		case SearchByISBN:
			field = b.ISBN
		}
		if strings.Contains(strings.ToLower(field), term) {
			results = append(results, b)
		}
	}
	return results, nil
}

// isDigits reports whether s is non-empty and consists only of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
