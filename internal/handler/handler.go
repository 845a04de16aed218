// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/shelfwise/lending-service/internal/model"
	"github.com/shelfwise/lending-service/internal/payment"
	"github.com/shelfwise/lending-service/internal/repository"
	"github.com/shelfwise/lending-service/internal/service"
)

// LibraryHandler holds all HTTP handlers for the library lending API.
type LibraryHandler struct {
	catalog  *service.CatalogService
	lending  *service.LendingService
	payments *service.PaymentService
	reports  *service.ReportService
	gateway  payment.Gateway
}

// NewLibraryHandler constructs a LibraryHandler.
func NewLibraryHandler(
	catalog *service.CatalogService,
	lending *service.LendingService,
	payments *service.PaymentService,
	reports *service.ReportService,
	gateway payment.Gateway,
) *LibraryHandler {
	return &LibraryHandler{
		catalog:  catalog,
		lending:  lending,
		payments: payments,
		reports:  reports,
		gateway:  gateway,
	}
}

// Routes registers all API routes on the given router.
func (h *LibraryHandler) Routes(r chi.Router) {
	r.Route("/books", func(r chi.Router) {
		r.Post("/", h.AddBook)
		r.Get("/", h.ListBooks)
		r.Get("/search", h.SearchBooks)
		r.Get("/{id}", h.GetBook)
		r.Post("/{id}/borrow", h.BorrowBook)
		r.Post("/{id}/return", h.ReturnBook)
		r.Get("/{id}/fee", h.GetLateFee)
		r.Post("/{id}/fee/pay", h.PayLateFee)
	})
	r.Post("/payments/refund", h.RefundPayment)
	r.Get("/patrons/{id}/report", h.PatronReport)
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain errors to HTTP statuses. Only errors the
// service layer deliberately produces are echoed to the client; anything
// unrecognized (store failures, broken connections) becomes an opaque 500 so
// internals never leak into response bodies.
func writeServiceError(w http.ResponseWriter, err error) {
	var valErr *service.ValidationError
	var procErr *service.PaymentProcessingError
	switch {
	case errors.Is(err, repository.ErrBookNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrBookUnavailable),
		errors.Is(err, repository.ErrBorrowLimitExceeded),
		errors.Is(err, repository.ErrAlreadyBorrowed),
		errors.Is(err, repository.ErrNotBorrowed),
		errors.Is(err, repository.ErrDuplicateISBN):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &valErr),
		errors.Is(err, service.ErrInvalidPatronID),
		errors.Is(err, service.ErrNoFeeOwed),
		errors.Is(err, service.ErrInvalidTransactionID),
		errors.Is(err, service.ErrRefundAmountNotPositive),
		errors.Is(err, service.ErrRefundExceedsMax):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPaymentDeclined),
		errors.Is(err, service.ErrRefundDeclined):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.As(err, &procErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Catalog handlers ─────────────────────────────────────────────────────────

// AddBook handles POST /books
func (h *LibraryHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req model.AddBookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	book, err := h.catalog.AddBook(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

// ListBooks handles GET /books
func (h *LibraryHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.ListBooks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list books")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if books == nil {
		books = []model.Book{}
	}

	writeJSON(w, http.StatusOK, books)
}

// SearchBooks handles GET /books/search?q=term&type=title|author|isbn
func (h *LibraryHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	searchType := r.URL.Query().Get("type")

	books, err := h.catalog.SearchBooks(r.Context(), term, searchType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

// GetBook handles GET /books/{id}
func (h *LibraryHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// ─── Lending handlers ─────────────────────────────────────────────────────────

// BorrowBook handles POST /books/{id}/borrow
func (h *LibraryHandler) BorrowBook(w http.ResponseWriter, r *http.Request) {
	var req model.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.lending.Borrow(r.Context(), req.PatronID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// ReturnBook handles POST /books/{id}/return
func (h *LibraryHandler) ReturnBook(w http.ResponseWriter, r *http.Request) {
	var req model.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	record, err := h.lending.Return(r.Context(), req.PatronID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GetLateFee handles GET /books/{id}/fee?patron_id=123456
func (h *LibraryHandler) GetLateFee(w http.ResponseWriter, r *http.Request) {
	patronID := r.URL.Query().Get("patron_id")

	fee, err := h.lending.AssessLateFee(r.Context(), patronID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to assess late fee")
		return
	}

	writeJSON(w, http.StatusOK, fee)
}

// ─── Payment handlers ─────────────────────────────────────────────────────────

// PayLateFee handles POST /books/{id}/fee/pay
func (h *LibraryHandler) PayLateFee(w http.ResponseWriter, r *http.Request) {
	var req model.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	receipt, err := h.payments.PayLateFee(r.Context(), req.PatronID, chi.URLParam(r, "id"), h.gateway)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// RefundPayment handles POST /payments/refund
func (h *LibraryHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req model.RefundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	receipt, err := h.payments.RefundLateFee(r.Context(), req.TransactionID, req.Amount, h.gateway)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// ─── Reporting handlers ───────────────────────────────────────────────────────

// PatronReport handles GET /patrons/{id}/report
func (h *LibraryHandler) PatronReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.PatronReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
