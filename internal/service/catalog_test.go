package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/lending-service/internal/model"
	"github.com/shelfwise/lending-service/internal/repository"
)

func TestAddBookValidation(t *testing.T) {
	testCases := []struct {
		name        string
		req         model.AddBookRequest
		expectedErr string
	}{
		{
			"missing title",
			model.AddBookRequest{Title: "   ", Author: "Robert", ISBN: "9780132350884", TotalCopies: 1},
			"title is required",
		},
		{
			"title too long",
			model.AddBookRequest{Title: strings.Repeat("x", 201), Author: "Robert", ISBN: "9780132350884", TotalCopies: 1},
			"title must be less than 200 characters",
		},
		{
			"missing author",
			model.AddBookRequest{Title: "Clean Code", Author: "", ISBN: "9780132350884", TotalCopies: 1},
			"author is required",
		},
		{
			"author too long",
			model.AddBookRequest{Title: "Clean Code", Author: strings.Repeat("y", 101), ISBN: "9780132350884", TotalCopies: 1},
			"author must be less than 100 characters",
		},
		{
			"isbn too short",
			model.AddBookRequest{Title: "Clean Code", Author: "Robert", ISBN: "123", TotalCopies: 1},
			"ISBN must be exactly 13 digits",
		},
		{
			"isbn with letters",
			model.AddBookRequest{Title: "Clean Code", Author: "Robert", ISBN: "97801323508ab", TotalCopies: 1},
			"ISBN must be exactly 13 digits",
		},
		{
			"zero copies",
			model.AddBookRequest{Title: "Clean Code", Author: "Robert", ISBN: "9780132350884", TotalCopies: 0},
			"total copies must be a positive integer",
		},
		{
			"negative copies",
			model.AddBookRequest{Title: "Clean Code", Author: "Robert", ISBN: "9780132350884", TotalCopies: -3},
			"total copies must be a positive integer",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			books := new(mockCatalogStore)
			svc := NewCatalogService(books)

			book, err := svc.AddBook(context.Background(), tt.req)
			assert.Nil(t, book)
			require.Error(t, err)
			assert.Equal(t, tt.expectedErr, err.Error())

			books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAddBookDuplicateISBN(t *testing.T) {
	books := new(mockCatalogStore)
	books.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrDuplicateISBN)
	svc := NewCatalogService(books)

	book, err := svc.AddBook(context.Background(), model.AddBookRequest{
		Title: "Clean Code", Author: "Robert", ISBN: "9780132350884", TotalCopies: 1,
	})
	assert.Nil(t, book)
	assert.ErrorIs(t, err, repository.ErrDuplicateISBN)

	books.AssertExpectations(t)
}

func TestAddBookTrimsAndCreates(t *testing.T) {
	books := new(mockCatalogStore)
	created := &model.Book{
		ID: "book-1", Title: "Clean Code", Author: "Robert",
		ISBN: "9780132350884", TotalCopies: 1, AvailableCopies: 1,
	}
	books.On("Create", mock.Anything, model.AddBookRequest{
		Title: "Clean Code", Author: "Robert", ISBN: "9780132350884", TotalCopies: 1,
	}).Return(created, nil)
	svc := NewCatalogService(books)

	book, err := svc.AddBook(context.Background(), model.AddBookRequest{
		Title: "  Clean Code  ", Author: " Robert ", ISBN: "9780132350884", TotalCopies: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, book.TotalCopies, book.AvailableCopies)

	books.AssertExpectations(t)
}

func TestSearchBooks(t *testing.T) {
	catalog := []model.Book{
		{ID: "1", Title: "Clean Code", Author: "Robert Martin", ISBN: "9780132350884"},
		{ID: "2", Title: "The Go Programming Language", Author: "Donovan", ISBN: "9780134190440"},
		{ID: "3", Title: "Clean Architecture", Author: "Robert Martin", ISBN: "9780134494166"},
	}

	testCases := []struct {
		name        string
		term        string
		searchType  string
		expectedIDs []string
	}{
		{"title match is case-insensitive", "clean", SearchByTitle, []string{"1", "3"}},
		{"title match with surrounding spaces", "  go programming  ", SearchByTitle, []string{"2"}},
		{"author match", "martin", SearchByAuthor, []string{"1", "3"}},
		{"isbn substring match", "0134", SearchByISBN, []string{"2", "3"}},
		{"no matches", "tolstoy", SearchByAuthor, []string{}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			books := new(mockCatalogStore)
			books.On("List", mock.Anything).Return(catalog, nil)
			svc := NewCatalogService(books)

			results, err := svc.SearchBooks(context.Background(), tt.term, tt.searchType)
			require.NoError(t, err)
			require.NotNil(t, results)

			ids := []string{}
			for _, b := range results {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestSearchBooksUnknownType(t *testing.T) {
	books := new(mockCatalogStore)
	svc := NewCatalogService(books)

	results, err := svc.SearchBooks(context.Background(), "clean", "publisher")
	assert.Nil(t, results)
	require.Error(t, err)
	assert.Equal(t, "search type must be one of title, author, isbn", err.Error())

	books.AssertNotCalled(t, "List", mock.Anything)
}

func TestGetBookNotFound(t *testing.T) {
	books := new(mockCatalogStore)
	books.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrBookNotFound)
	svc := NewCatalogService(books)

	book, err := svc.GetBook(context.Background(), "missing")
	assert.Nil(t, book)
	assert.ErrorIs(t, err, repository.ErrBookNotFound)

	books.AssertExpectations(t)
}
