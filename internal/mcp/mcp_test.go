package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/vire-folio/internal/cache"
	"github.com/bobmcallan/vire-folio/internal/common"
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

func testLogger() *common.Logger {
	return common.NewSilentLogger()
}

func testService(t *testing.T) *portfolio.Service {
	t.Helper()
	logger := testLogger()
	clock := func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	return portfolio.NewService(
		store.New(memory.NewStore(), logger),
		normalizer.New(logger, normalizer.WithClock(clock)),
		cache.New(time.Minute, 16),
		logger,
		portfolio.WithClock(clock),
	)
}

func call(args map[string]any) mcpgo.CallToolRequest {
	var r mcpgo.CallToolRequest
	r.Params.Arguments = args
	return r
}

func resultText(t *testing.T, res *mcpgo.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("expected content in result")
	}
	text, ok := res.Content[0].(mcpgo.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func importHistory(t *testing.T, svc Service) {
	t.Helper()
	res, err := ImportHandler(svc, testLogger())(context.Background(), call(map[string]any{
		"content":  historyCSV,
		"filename": "history.csv",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
}

func TestImportHandler(t *testing.T) {
	svc := testService(t)

	res, err := ImportHandler(svc, testLogger())(context.Background(), call(map[string]any{
		"content":  historyCSV,
		"filename": "history.csv",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var out portfolio.ImportResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("failed to unmarshal import result: %v", err)
	}
	if out.Stats.TransactionsAdded != 3 {
		t.Errorf("expected 3 transactions added, got %d", out.Stats.TransactionsAdded)
	}
}

func TestImportHandler_Errors(t *testing.T) {
	svc := testService(t)
	handler := ImportHandler(svc, testLogger())

	res, _ := handler(context.Background(), call(map[string]any{}))
	if !res.IsError {
		t.Error("expected error when content is missing")
	}

	res, _ = handler(context.Background(), call(map[string]any{"content": "a,b\n1,2\n"}))
	if !res.IsError {
		t.Error("expected error for unrecognized file")
	}
	if !strings.Contains(resultText(t, res), "no recognizable header row") {
		t.Errorf("expected parse reason, got %s", resultText(t, res))
	}
}

func TestHoldingsHandler(t *testing.T) {
	svc := testService(t)
	importHistory(t, svc)

	res, err := HoldingsHandler(svc, "USD")(context.Background(), call(nil))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v", err)
	}
	text := resultText(t, res)
	if !strings.Contains(text, "| AAPL |") || !strings.Contains(text, "$110.00") {
		t.Errorf("expected AAPL at $110.00 cost/share, got:\n%s", text)
	}
}

func TestDividendsHandler_Symbol(t *testing.T) {
	svc := testService(t)
	importHistory(t, svc)

	res, _ := DividendsHandler(svc, "USD")(context.Background(), call(map[string]any{"symbol": "MSFT"}))
	if !strings.Contains(resultText(t, res), "No dividends.") {
		t.Errorf("expected no MSFT dividends, got %s", resultText(t, res))
	}

	res, _ = DividendsHandler(svc, "USD")(context.Background(), call(map[string]any{"symbol": "AAPL"}))
	if !strings.Contains(resultText(t, res), "$3.75") {
		t.Errorf("expected AAPL dividend, got %s", resultText(t, res))
	}
}

func TestProjectionHandler(t *testing.T) {
	svc := testService(t)
	importHistory(t, svc)

	res, _ := ProjectionHandler(svc, "USD")(context.Background(), call(nil))
	text := resultText(t, res)
	if !strings.Contains(text, "# Projected Income") || !strings.Contains(text, "| 2024-06 |") {
		t.Errorf("unexpected projection:\n%s", text)
	}
}

func TestPeriodHandler(t *testing.T) {
	svc := testService(t)
	importHistory(t, svc)

	res, _ := PeriodHandler(svc, "USD")(context.Background(), call(map[string]any{
		"period": "custom",
		"months": []any{"January"},
	}))
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "# Period: January") {
		t.Errorf("unexpected report:\n%s", resultText(t, res))
	}

	res, _ = PeriodHandler(svc, "USD")(context.Background(), call(map[string]any{"period": "decade"}))
	if !res.IsError {
		t.Error("expected error for unknown period")
	}
}

func TestVersionToolHandler(t *testing.T) {
	res, err := VersionToolHandler()(context.Background(), call(nil))
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(resultText(t, res)), &info); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if info.Version != common.Version {
		t.Errorf("expected version %s, got %s", common.Version, info.Version)
	}
}

func TestHandler_ListsTools(t *testing.T) {
	svc := testService(t)
	h := NewHandler(NewServer(svc, "USD", testLogger()), testLogger())

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	for _, name := range []string{"get_holdings", "get_dividends", "get_income_projection", "get_period_report", "import_csv", "get_version"} {
		if !strings.Contains(w.Body.String(), name) {
			t.Errorf("expected tool %s in listing", name)
		}
	}
}
