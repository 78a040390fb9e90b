// Package assist provides an LLM-backed Parser for exports the rule-based
// normalizer cannot recognise, and the chain that falls back to it.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/normalizer"
)

const systemInstruction = `You convert brokerage CSV exports into JSON.
Decide whether the file is a "positions" snapshot (current holdings) or a
"transactions" history (dated activity). Reply with JSON only:
{"file_type": "positions"|"transactions",
 "rows": [{"date": "YYYY-MM-DD", "action": "", "symbol": "", "description": "",
           "quantity": 0, "price": 0, "amount": 0, "fees": 0, "value": 0,
           "cost_basis": 0, "annual_income": 0}]}
Use the broker's own action wording (e.g. "YOU BOUGHT", "DIVIDEND RECEIVED").
Omit header, summary and disclaimer lines. Never invent rows.`

// Generator sends a prompt to a language model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeminiGenerator implements Generator with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini API client.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate requests a JSON reply for prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

// GeminiParser implements interfaces.Parser by asking a Generator to
// tabulate the file, then building records with the normalizer's row rules.
type GeminiParser struct {
	gen        Generator
	rows       *normalizer.Normalizer
	chunkLines int
	logger     *common.Logger
}

// contextLines is how many leading lines of the file are repeated ahead of
// every chunk after the first.
const contextLines = 10

// NewGeminiParser creates a parser that sends the file in requests of at
// most chunkLines lines each.
func NewGeminiParser(gen Generator, rows *normalizer.Normalizer, chunkLines int, logger *common.Logger) *GeminiParser {
	if chunkLines <= 0 {
		chunkLines = 200
	}
	return &GeminiParser{gen: gen, rows: rows, chunkLines: chunkLines, logger: logger}
}

// reply is the JSON shape requested from the model.
type reply struct {
	FileType string     `json:"file_type"`
	Rows     []replyRow `json:"rows"`
}

type replyRow struct {
	Date         cell `json:"date"`
	Action       cell `json:"action"`
	Symbol       cell `json:"symbol"`
	Description  cell `json:"description"`
	Quantity     cell `json:"quantity"`
	Price        cell `json:"price"`
	Amount       cell `json:"amount"`
	Fees         cell `json:"fees"`
	Value        cell `json:"value"`
	CostBasis    cell `json:"cost_basis"`
	AnnualIncome cell `json:"annual_income"`
}

// cell accepts JSON strings, numbers and null, keeping the text form so the
// normalizer's coercion rules apply.
type cell string

func (c *cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = cell(s)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*c = cell(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// Parse implements interfaces.Parser. Long files are sent in chunks; the
// file type comes from the first reply and rows from every reply.
func (p *GeminiParser) Parse(ctx context.Context, data []byte, filename string) (*models.ParseResult, error) {
	lines := splitLines(string(data))
	if len(lines) == 0 {
		return nil, &normalizer.ParseError{Filename: filename, Reason: "no content", Err: normalizer.ErrEmptyInput}
	}

	chunks := chunk(lines, p.chunkLines)
	lead := lines[:min(contextLines, p.chunkLines, len(lines))]

	var fileType models.FileType
	var rows []normalizer.RawRow
	for i, part := range chunks {
		var header []string
		if i > 0 {
			header = lead
		}
		r, err := p.ask(ctx, filename, buildPrompt(filename, header, part, i+1, len(chunks)))
		if err != nil {
			return nil, err
		}
		if i == 0 {
			if fileType, err = replyFileType(filename, r.FileType); err != nil {
				return nil, err
			}
		}
		for _, row := range r.Rows {
			rows = append(rows, toRawRow(fileType, row, len(rows)+1))
		}
	}

	result := p.rows.FromRows(fileType, rows)
	p.logger.Info().
		Str("file", filename).
		Str("type", string(fileType)).
		Int("lines", len(lines)).
		Int("requests", len(chunks)).
		Int("rows", len(rows)).
		Int("skipped", result.SkippedRows).
		Msg("file parsed by assistant")
	return result, nil
}

func (p *GeminiParser) ask(ctx context.Context, filename, prompt string) (reply, error) {
	var r reply
	text, err := p.gen.Generate(ctx, systemInstruction, prompt)
	if err != nil {
		return r, &normalizer.ParseError{Filename: filename, Reason: "assistant request failed", Err: err}
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &r); err != nil {
		return r, &normalizer.ParseError{Filename: filename, Reason: "assistant reply is not valid JSON", Err: err}
	}
	return r, nil
}

func replyFileType(filename, s string) (models.FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(models.FileTypePositions):
		return models.FileTypePositions, nil
	case string(models.FileTypeTransactions):
		return models.FileTypeTransactions, nil
	}
	return "", &normalizer.ParseError{
		Filename: filename,
		Reason:   fmt.Sprintf("assistant returned file type %q", s),
		Err:      normalizer.ErrUnrecognizedFormat,
	}
}

// buildPrompt renders one request. Header lines carry the file's column
// names for chunks that start mid-file.
func buildPrompt(filename string, header, lines []string, part, parts int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filename: %s\n", filename)
	if parts > 1 {
		fmt.Fprintf(&b, "Part %d of %d.\n", part, parts)
	}
	if len(header) > 0 {
		b.WriteString("\nLeading lines of the file, for column context only. Emit no rows for them:\n")
		b.WriteString(strings.Join(header, "\n"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func toRawRow(fileType models.FileType, r replyRow, line int) normalizer.RawRow {
	if fileType == models.FileTypePositions {
		return normalizer.PositionRow{
			Line:         line,
			Symbol:       string(r.Symbol),
			Name:         string(r.Description),
			Shares:       string(r.Quantity),
			Price:        string(r.Price),
			Value:        string(r.Value),
			CostBasis:    string(r.CostBasis),
			AnnualIncome: string(r.AnnualIncome),
		}
	}
	return normalizer.TransactionRow{
		Line:        line,
		Date:        string(r.Date),
		Action:      string(r.Action),
		Symbol:      string(r.Symbol),
		Description: string(r.Description),
		Quantity:    string(r.Quantity),
		Price:       string(r.Price),
		Amount:      string(r.Amount),
		Fees:        string(r.Fees),
	}
}

// splitLines splits s into lines without trailing blank lines. An input of
// only whitespace yields none.
func splitLines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), " \t\r\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func chunk(lines []string, size int) [][]string {
	var out [][]string
	for len(lines) > size {
		out = append(out, lines[:size])
		lines = lines[size:]
	}
	return append(out, lines)
}

// stripFences removes a ```json ... ``` wrapper some models add despite the
// JSON response type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
