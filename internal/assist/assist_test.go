package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/config"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func newRules() *normalizer.Normalizer {
	return normalizer.New(common.NewSilentLogger())
}

func TestGeminiParser_Transactions(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + `{"file_type":"transactions","rows":[
		{"date":"2024-01-15","action":"YOU BOUGHT","symbol":"aapl","description":"APPLE INC","quantity":10,"price":"100.00","amount":null,"fees":0},
		{"date":"2024-02-15","action":"DIVIDEND RECEIVED","symbol":"AAPL","description":"APPLE INC","amount":2.4},
		{"date":"2024-02-20","action":"INTEREST","symbol":"","description":"CASH","amount":0.1}
	]}` + "\n```"}
	p := NewGeminiParser(gen, newRules(), 50, common.NewSilentLogger())

	result, err := p.Parse(context.Background(), []byte("weird,layout\n1,2\n"), "odd.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if result.FileType != models.FileTypeTransactions {
		t.Fatalf("expected transactions, got %s", result.FileType)
	}
	if len(result.Transactions) != 2 || len(result.Dividends) != 1 {
		t.Fatalf("expected 2 transactions and 1 dividend, got %d / %d", len(result.Transactions), len(result.Dividends))
	}
	buy := result.Transactions[0]
	if buy.Symbol != "AAPL" || buy.Amount != 1000 || buy.Type != models.TransactionBuy {
		t.Errorf("unexpected buy: %+v", buy)
	}
	if result.SkippedRows != 1 {
		t.Errorf("expected 1 skipped row, got %d", result.SkippedRows)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Filename: odd.csv") {
		t.Errorf("unexpected prompt: %q", gen.prompts)
	}
}

func TestGeminiParser_Positions(t *testing.T) {
	gen := &fakeGenerator{reply: `{"file_type":"positions","rows":[{"symbol":"VTI","description":"Vanguard Total","quantity":"4","price":"250"}]}`}
	p := NewGeminiParser(gen, newRules(), 0, common.NewSilentLogger())

	result, err := p.Parse(context.Background(), []byte("x\n"), "odd.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Holdings) != 1 || result.Holdings[0].CurrentValue != 1000 {
		t.Errorf("unexpected holdings: %+v", result.Holdings)
	}
}

func TestGeminiParser_SplitsIntoChunks(t *testing.T) {
	gen := &fakeGenerator{reply: `{"file_type":"positions","rows":[]}`}
	p := NewGeminiParser(gen, newRules(), 2, common.NewSilentLogger())

	if _, err := p.Parse(context.Background(), []byte("line-one\nline-two\nline-three\nline-four\nline-five\n"), "f.csv"); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(gen.prompts) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(gen.prompts))
	}
	if strings.Contains(gen.prompts[0], "line-three") || !strings.Contains(gen.prompts[0], "line-two") {
		t.Errorf("first request should hold only the first 2 lines: %q", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[2], "line-one") || !strings.HasSuffix(gen.prompts[2], "\nline-five") {
		t.Errorf("last request should repeat the leading lines then hold line-five: %q", gen.prompts[2])
	}
}

// rowEchoGenerator answers with one BUY row per "date,symbol,quantity" line
// after the last blank line of the prompt.
type rowEchoGenerator struct{ calls int }

func (g *rowEchoGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	g.calls++
	body := prompt[strings.LastIndex(prompt, "\n\n")+2:]
	var rows []string
	for _, line := range strings.Split(body, "\n") {
		f := strings.Split(line, ",")
		if len(f) != 3 || f[0] == "Date" {
			continue
		}
		rows = append(rows, fmt.Sprintf(`{"date":%q,"action":"BUY","symbol":%q,"quantity":%s,"price":1}`, f[0], f[1], f[2]))
	}
	return `{"file_type":"transactions","rows":[` + strings.Join(rows, ",") + `]}`, nil
}

func TestGeminiParser_LongFileKeepsEveryRow(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Symbol,Quantity\n")
	for i := 1; i <= 500; i++ {
		fmt.Fprintf(&b, "2024-01-02,AAPL,%d\n", i)
	}
	gen := &rowEchoGenerator{}
	p := NewGeminiParser(gen, newRules(), 200, common.NewSilentLogger())

	result, err := p.Parse(context.Background(), []byte(b.String()), "big.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if gen.calls != 3 {
		t.Errorf("expected 3 requests, got %d", gen.calls)
	}
	if len(result.Transactions) != 500 {
		t.Fatalf("expected 500 transactions, got %d (skipped %d)", len(result.Transactions), result.SkippedRows)
	}
	var shares float64
	for _, tx := range result.Transactions {
		shares += tx.Shares
	}
	if shares != 125250 {
		t.Errorf("expected 125250 shares in total, got %v", shares)
	}
}

func TestGeminiParser_Errors(t *testing.T) {
	ctx := context.Background()
	logger := common.NewSilentLogger()

	cases := map[string]*fakeGenerator{
		"request": {err: errors.New("quota")},
		"json":    {reply: "sorry, I cannot help"},
		"type":    {reply: `{"file_type":"statement","rows":[]}`},
	}
	for name, gen := range cases {
		p := NewGeminiParser(gen, newRules(), 10, logger)
		_, err := p.Parse(ctx, []byte("a,b\n"), "f.csv")
		var pe *normalizer.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParseError, got %v", name, err)
		}
	}
}

type stubParser struct {
	result *models.ParseResult
	err    error
	calls  int
}

func (s *stubParser) Parse(context.Context, []byte, string) (*models.ParseResult, error) {
	s.calls++
	return s.result, s.err
}

func TestFallbackParser(t *testing.T) {
	ctx := context.Background()
	parseErr := &normalizer.ParseError{Filename: "f.csv", Reason: "no header", Err: normalizer.ErrUnrecognizedFormat}
	good := &models.ParseResult{FileType: models.FileTypePositions}

	t.Run("primary succeeds", func(t *testing.T) {
		primary := &stubParser{result: good}
		secondary := &stubParser{}
		f := &FallbackParser{Primary: primary, Secondary: secondary, Logger: common.NewSilentLogger()}
		if _, err := f.Parse(ctx, nil, "f.csv"); err != nil {
			t.Fatal(err)
		}
		if secondary.calls != 0 {
			t.Error("secondary should not be called")
		}
	})

	t.Run("falls back on parse error", func(t *testing.T) {
		secondary := &stubParser{result: good}
		f := &FallbackParser{Primary: &stubParser{err: parseErr}, Secondary: secondary, Logger: common.NewSilentLogger()}
		got, err := f.Parse(ctx, nil, "f.csv")
		if err != nil || got != good {
			t.Fatalf("expected secondary result, got %v, %v", got, err)
		}
	})

	t.Run("both fail returns primary error", func(t *testing.T) {
		f := &FallbackParser{
			Primary:   &stubParser{err: parseErr},
			Secondary: &stubParser{err: errors.New("offline")},
			Logger:    common.NewSilentLogger(),
		}
		_, err := f.Parse(ctx, nil, "f.csv")
		if !errors.Is(err, normalizer.ErrUnrecognizedFormat) {
			t.Errorf("expected primary error, got %v", err)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		secondary := &stubParser{result: good}
		f := &FallbackParser{Primary: &stubParser{err: context.Canceled}, Secondary: secondary, Logger: common.NewSilentLogger()}
		if _, err := f.Parse(ctx, nil, "f.csv"); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if secondary.calls != 0 {
			t.Error("secondary should not be called")
		}
	})
}

func TestNewParser_Modes(t *testing.T) {
	ctx := context.Background()
	rules := newRules()
	logger := common.NewSilentLogger()

	p, err := NewParser(ctx, "rules", config.AssistConfig{}, rules, logger)
	if err != nil || p != rules {
		t.Errorf("rules mode should return the normalizer, got %T, %v", p, err)
	}

	p, err = NewParser(ctx, "auto", config.AssistConfig{}, rules, logger)
	if err != nil || p != rules {
		t.Errorf("auto without key should degrade to rules, got %T, %v", p, err)
	}

	if _, err := NewParser(ctx, "assist", config.AssistConfig{}, rules, logger); err == nil {
		t.Error("assist without key should fail")
	}
	if _, err := NewParser(ctx, "magic", config.AssistConfig{}, rules, logger); err == nil {
		t.Error("unknown mode should fail")
	}
}
