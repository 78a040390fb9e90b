// Package normalizer is the deterministic brokerage-export parser. It finds
// the header row, detects whether the file is a positions snapshot or a
// transaction history, maps columns through a synonym table and produces
// canonical records. It performs no I/O.
package normalizer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normalizer implements interfaces.Parser.
type Normalizer struct {
	logger *common.Logger
	now    func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used to decide whether a positions-file pay
// date has already passed.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// New creates a Normalizer.
func New(logger *common.Logger, opts ...Option) *Normalizer {
	n := &Normalizer{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Parse interprets data as a CSV brokerage export.
func (n *Normalizer) Parse(_ context.Context, data []byte, filename string) (*models.ParseResult, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Filename: filename, Reason: "no content", Err: ErrEmptyInput}
	}

	records, badLines, err := readRecords(data)
	if err != nil {
		return nil, &ParseError{Filename: filename, Reason: "unreadable CSV", Err: err}
	}

	headerIdx, fileType, ok := findHeader(records, filename)
	if !ok {
		return nil, &ParseError{Filename: filename, Reason: "no recognizable header row", Err: ErrUnrecognizedFormat}
	}

	headers := normalizeHeaders(records[headerIdx])
	var columns columnMap
	if fileType == models.FileTypePositions {
		columns = positionColumns(headers)
	} else {
		columns = transactionColumns(headers)
	}

	rows := make([]RawRow, 0, len(records)-headerIdx-1)
	for i := headerIdx + 1; i < len(records); i++ {
		rec := records[i]
		if blankRecord(rec) {
			continue
		}
		if fileType == models.FileTypePositions {
			rows = append(rows, extractPositionRow(columns, rec, i+1))
		} else {
			rows = append(rows, extractTransactionRow(columns, rec, i+1))
		}
	}

	result := n.FromRows(fileType, rows)
	result.SkippedRows += badLines

	n.logger.Info().
		Str("file", filename).
		Str("type", string(fileType)).
		Int("transactions", len(result.Transactions)).
		Int("dividends", len(result.Dividends)).
		Int("holdings", len(result.Holdings)).
		Int("skipped", result.SkippedRows).
		Msg("file parsed")

	return result, nil
}

// FromRows builds a ParseResult from already-extracted rows. Rows whose kind
// does not match fileType are skipped.
func (n *Normalizer) FromRows(fileType models.FileType, rows []RawRow) *models.ParseResult {
	result := &models.ParseResult{FileType: fileType}
	switch fileType {
	case models.FileTypeTransactions:
		n.buildTransactions(result, rows)
	default:
		result.FileType = models.FileTypePositions
		n.buildPositions(result, rows)
	}
	return result
}

func (n *Normalizer) buildTransactions(result *models.ParseResult, rows []RawRow) {
	for _, raw := range rows {
		row, ok := raw.(TransactionRow)
		if !ok {
			result.SkippedRows++
			continue
		}
		tx, div, reason := buildTransaction(row)
		if reason != skipNone {
			n.skip(result, raw, reason)
			continue
		}
		result.Transactions = append(result.Transactions, tx)
		if div != nil {
			result.Dividends = append(result.Dividends, *div)
		}
	}
}

func (n *Normalizer) buildPositions(result *models.ParseResult, rows []RawRow) {
	bySymbol := make(map[string]*positionAccumulator)
	var order []string

	for _, raw := range rows {
		row, ok := raw.(PositionRow)
		if !ok {
			result.SkippedRows++
			continue
		}
		symbol := CleanSymbol(row.Symbol)
		if symbol == "" {
			n.skip(result, raw, skipBadSymbol)
			continue
		}
		shares := ParseNumber(row.Shares)
		if shares <= 0 {
			n.skip(result, raw, skipNoShares)
			continue
		}

		acc, seen := bySymbol[symbol]
		if !seen {
			acc = &positionAccumulator{holding: models.Holding{
				ID:     models.HoldingID(symbol),
				Symbol: symbol,
				Source: models.SourceSnapshot,
			}}
			bySymbol[symbol] = acc
			order = append(order, symbol)
		}
		acc.add(row, shares)
	}

	asOf := n.now()
	for _, symbol := range order {
		acc := bySymbol[symbol]
		acc.holding = acc.finish()
		result.Holdings = append(result.Holdings, acc.holding)
		if div := acc.realizedDividend(asOf); div != nil {
			result.Dividends = append(result.Dividends, *div)
		}
	}
	models.Allocate(result.Holdings)
}

func (n *Normalizer) skip(result *models.ParseResult, row RawRow, reason skipReason) {
	result.SkippedRows++
	n.logger.Debug().Int("line", row.LineNumber()).Str("reason", string(reason)).Msg("row skipped")
}

// readRecords reads every CSV record. Malformed lines are dropped and
// counted; the file is unreadable only when no record survives.
func readRecords(data []byte) ([][]string, int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var (
		records [][]string
		bad     int
		lastErr error
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				bad++
				lastErr = err
				continue
			}
			return nil, 0, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no records")
		}
		return nil, 0, lastErr
	}
	return records, bad, nil
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
