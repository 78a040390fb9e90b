package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/vire-folio/internal/cache"
	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
	"github.com/bobmcallan/vire-folio/internal/portfolio"
	"github.com/bobmcallan/vire-folio/internal/storage/memory"
	"github.com/bobmcallan/vire-folio/internal/store"
)

const historyCSV = `Date,Action,Symbol,Description,Quantity,Price,Amount
2024-01-10,BUY,AAPL,APPLE INC,10,100,-1000
2024-02-10,BUY,AAPL,APPLE INC,5,130,-650
2024-05-15,DIVIDEND,AAPL,APPLE INC,,,3.75
`

func newTestHandler(t *testing.T) (*PortfolioHandler, *memory.Store) {
	t.Helper()
	logger := common.NewSilentLogger()
	clock := func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	mem := memory.NewStore()
	svc := portfolio.NewService(
		store.New(mem, logger),
		normalizer.New(logger, normalizer.WithClock(clock)),
		cache.New(time.Minute, 16),
		logger,
		portfolio.WithClock(clock),
	)
	return NewPortfolioHandler(svc, logger, 1<<20), mem
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

func importRaw(t *testing.T, h *PortfolioHandler, body, filename string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/import?filename="+filename, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	h.HandleImport(w, req)
	return w
}

func TestHandleImport_RawBody(t *testing.T) {
	h, _ := newTestHandler(t)

	w := importRaw(t, h, historyCSV, "history.csv")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res portfolio.ImportResult
	decode(t, w, &res)
	if res.FileType != "transactions" {
		t.Errorf("expected transactions, got %s", res.FileType)
	}
	if res.Stats.TransactionsAdded != 3 || res.Stats.DividendsAdded != 1 {
		t.Errorf("unexpected stats: %+v", res.Stats)
	}
	if res.Filename != "history.csv" {
		t.Errorf("expected filename history.csv, got %s", res.Filename)
	}
}

func TestHandleImport_Multipart(t *testing.T) {
	h, _ := newTestHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "History_2024.csv")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte(historyCSV))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.HandleImport(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res portfolio.ImportResult
	decode(t, w, &res)
	if res.Filename != "History_2024.csv" {
		t.Errorf("expected multipart filename, got %s", res.Filename)
	}
}

func TestHandleImport_ParseErrorIs422(t *testing.T) {
	h, _ := newTestHandler(t)

	w := importRaw(t, h, "hello,world\n1,2\n", "notes.csv")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if !strings.Contains(body["error"], "no recognizable header row") {
		t.Errorf("expected reason in error, got %q", body["error"])
	}
}

func TestHandleImport_PersistenceErrorIs500(t *testing.T) {
	h, mem := newTestHandler(t)
	mem.FailSave(interfaces.EntityHoldings, errors.New("disk full"))

	w := importRaw(t, h, historyCSV, "history.csv")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestHandleImport_TooLarge(t *testing.T) {
	h, _ := newTestHandler(t)
	h.maxUpload = 16

	w := importRaw(t, h, historyCSV, "history.csv")
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestHandleImport_RejectsGET(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleImport(w, httptest.NewRequest("GET", "/api/import", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestHandleHoldings(t *testing.T) {
	h, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleHoldings(w, httptest.NewRequest("GET", "/api/holdings", nil))
	if !strings.Contains(w.Body.String(), `"holdings":[]`) {
		t.Errorf("expected empty holdings array, got %s", w.Body.String())
	}

	importRaw(t, h, historyCSV, "history.csv")

	w = httptest.NewRecorder()
	h.HandleHoldings(w, httptest.NewRequest("GET", "/api/holdings", nil))
	var body struct {
		Holdings []struct {
			Symbol    string  `json:"symbol"`
			Shares    float64 `json:"shares"`
			TotalCost float64 `json:"total_cost"`
		} `json:"holdings"`
		Count int `json:"count"`
	}
	decode(t, w, &body)
	if body.Count != 1 || body.Holdings[0].Symbol != "AAPL" {
		t.Fatalf("unexpected holdings: %+v", body)
	}
	if body.Holdings[0].Shares != 15 || body.Holdings[0].TotalCost != 1650 {
		t.Errorf("expected 15 shares at 1650, got %+v", body.Holdings[0])
	}
}

func TestHandleTransactionsAndDividends(t *testing.T) {
	h, _ := newTestHandler(t)
	importRaw(t, h, historyCSV, "history.csv")

	w := httptest.NewRecorder()
	h.HandleTransactions(w, httptest.NewRequest("GET", "/api/transactions?symbol=aapl", nil))
	var txs struct {
		Count int `json:"count"`
	}
	decode(t, w, &txs)
	if txs.Count != 3 {
		t.Errorf("expected 3 transactions, got %d", txs.Count)
	}

	w = httptest.NewRecorder()
	h.HandleDividends(w, httptest.NewRequest("GET", "/api/dividends", nil))
	var divs struct {
		Count int     `json:"count"`
		Total float64 `json:"total"`
	}
	decode(t, w, &divs)
	if divs.Count != 1 || divs.Total != 3.75 {
		t.Errorf("unexpected dividends: %+v", divs)
	}
}

func TestHandleProjection(t *testing.T) {
	h, _ := newTestHandler(t)
	importRaw(t, h, historyCSV, "history.csv")

	w := httptest.NewRecorder()
	h.HandleProjection(w, httptest.NewRequest("GET", "/api/projection", nil))
	var body portfolio.IncomeProjection
	decode(t, w, &body)
	if len(body.Months) != 12 {
		t.Errorf("expected 12 months, got %d", len(body.Months))
	}
	if body.Months[0].Month != "2024-06" {
		t.Errorf("expected projection to start 2024-06, got %s", body.Months[0].Month)
	}
}

func TestHandlePeriod(t *testing.T) {
	h, _ := newTestHandler(t)
	importRaw(t, h, historyCSV, "history.csv")

	w := httptest.NewRecorder()
	h.HandlePeriod(w, httptest.NewRequest("GET", "/api/period?period=custom&months=January,May", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Transactions []json.RawMessage `json:"transactions"`
		PeriodIncome float64           `json:"period_income"`
	}
	decode(t, w, &body)
	if len(body.Transactions) != 2 {
		t.Errorf("expected January and May transactions, got %d", len(body.Transactions))
	}
	if body.PeriodIncome != 3.75 {
		t.Errorf("expected income 3.75, got %v", body.PeriodIncome)
	}
}

func TestHandlePeriod_BadInput(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, q := range []string{"period=fortnight", "period=custom&months=Smarch"} {
		w := httptest.NewRecorder()
		h.HandlePeriod(w, httptest.NewRequest("GET", "/api/period?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestHandleSummaryAndClear(t *testing.T) {
	h, _ := newTestHandler(t)
	importRaw(t, h, historyCSV, "history.csv")

	w := httptest.NewRecorder()
	h.HandleClear(w, httptest.NewRequest("POST", "/api/data", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for POST, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleClear(w, httptest.NewRequest("DELETE", "/api/data", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleSummary(w, httptest.NewRequest("GET", "/api/summary", nil))
	var sum portfolio.Summary
	decode(t, w, &sum)
	if sum.Holdings != 0 || sum.Transactions != 0 {
		t.Errorf("expected empty summary after clear, got %+v", sum)
	}
}

type failingService struct {
	PortfolioService
	err error
}

func (f failingService) Holdings(context.Context) ([]models.Holding, error) { return nil, f.err }

func TestWriteServiceError_Unknown(t *testing.T) {
	h := NewPortfolioHandler(failingService{err: errors.New("boom")}, common.NewSilentLogger(), 1<<20)

	w := httptest.NewRecorder()
	h.HandleHoldings(w, httptest.NewRequest("GET", "/api/holdings", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("expected internal error detail not to leak")
	}
}
