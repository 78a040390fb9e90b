package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
	"github.com/bobmcallan/vire-folio/internal/period"
	"github.com/bobmcallan/vire-folio/internal/portfolio"
	"github.com/bobmcallan/vire-folio/internal/store"
)

// PortfolioService is the engine surface the API exposes.
type PortfolioService interface {
	Import(ctx context.Context, data []byte, filename string) (*portfolio.ImportResult, error)
	Holdings(ctx context.Context) ([]models.Holding, error)
	Transactions(ctx context.Context, symbol string) ([]models.Transaction, error)
	Dividends(ctx context.Context, symbol string) ([]models.DividendPayment, error)
	Projection(ctx context.Context) (*portfolio.IncomeProjection, error)
	Period(ctx context.Context, p period.Period, months []string) (*period.Result, error)
	Summary(ctx context.Context) (*portfolio.Summary, error)
	Clear(ctx context.Context) error
}

const defaultUploadName = "upload.csv"

// PortfolioHandler serves the portfolio JSON API.
type PortfolioHandler struct {
	svc       PortfolioService
	logger    *common.Logger
	maxUpload int64
}

// NewPortfolioHandler creates a handler accepting uploads of at most maxUpload bytes.
func NewPortfolioHandler(svc PortfolioService, logger *common.Logger, maxUpload int64) *PortfolioHandler {
	return &PortfolioHandler{svc: svc, logger: logger, maxUpload: maxUpload}
}

// HandleImport handles POST /api/import. The file is taken from the
// multipart field "file", or from the raw body named by ?filename=.
func (h *PortfolioHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	data, filename, err := h.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Import(r.Context(), data, filename)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (h *PortfolioHandler) readUpload(r *http.Request) ([]byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing multipart field \"file\": %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = defaultUploadName
	}
	return data, filename, nil
}

// HandleHoldings handles GET /api/holdings.
func (h *PortfolioHandler) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	holdings, err := h.svc.Holdings(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings":    nonNil(holdings),
		"count":       len(holdings),
		"total_value": models.TotalValue(holdings),
	})
}

// HandleTransactions handles GET /api/transactions?symbol=.
func (h *PortfolioHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	txs, err := h.svc.Transactions(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": nonNil(txs),
		"count":        len(txs),
	})
}

// HandleDividends handles GET /api/dividends?symbol=.
func (h *PortfolioHandler) HandleDividends(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	divs, err := h.svc.Dividends(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	var total float64
	for _, d := range divs {
		total += d.Amount
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"dividends": nonNil(divs),
		"count":     len(divs),
		"total":     total,
	})
}

// HandleProjection handles GET /api/projection.
func (h *PortfolioHandler) HandleProjection(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	proj, err := h.svc.Projection(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := *proj
	out.Profiles = nonNil(out.Profiles)
	WriteJSON(w, http.StatusOK, out)
}

// HandlePeriod handles GET /api/period?period=ytd&months=January,March.
func (h *PortfolioHandler) HandlePeriod(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	p, err := period.ParsePeriod(q.Get("period"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	months := SplitList(q.Get("months"))
	for _, m := range months {
		if _, err := period.ParseMonth(m); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := h.svc.Period(r.Context(), p, months)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := *res
	out.Transactions = nonNil(out.Transactions)
	out.Dividends = nonNil(out.Dividends)
	WriteJSON(w, http.StatusOK, out)
}

// HandleSummary handles GET /api/summary.
func (h *PortfolioHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	sum, err := h.svc.Summary(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sum)
}

// HandleClear handles DELETE /api/data.
func (h *PortfolioHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	if err := h.svc.Clear(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// writeServiceError maps engine errors onto HTTP status codes.
func (h *PortfolioHandler) writeServiceError(w http.ResponseWriter, err error) {
	var parseErr *normalizer.ParseError
	var persistErr *store.PersistenceError
	switch {
	case errors.As(err, &parseErr):
		WriteError(w, http.StatusUnprocessableEntity, parseErr.Error())
	case errors.As(err, &persistErr):
		h.logger.Error().Err(err).Str("entity", string(persistErr.Entity)).Msg("persistence failure")
		WriteError(w, http.StatusInternalServerError, "storage failure")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// SplitList splits a comma-separated query value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
