package normalizer

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/bobmcallan/vire-folio/internal/models"
)

// headerScanLimit bounds how many leading records may be export preamble.
const headerScanLimit = 30

type keyword struct {
	word    string
	aliases []string
}

var positionKeywords = []keyword{
	{word: "symbol"},
	{word: "ticker"},
	{word: "share", aliases: []string{"qty", "quantity", "units"}},
	{word: "position"},
	{word: "value", aliases: []string{"market value"}},
	{word: "price"},
	{word: "cost", aliases: []string{"basis"}},
}

var transactionKeywords = []keyword{
	{word: "date"},
	{word: "transaction"},
	{word: "action"},
	{word: "type"},
	{word: "buy"},
	{word: "sell"},
	{word: "symbol", aliases: []string{"ticker"}},
	{word: "price"},
	{word: "amount"},
	{word: "quantity", aliases: []string{"qty", "shares"}},
}

// activityTokens mark a header as an activity log when both signatures match.
var activityTokens = []string{
	"action", "transaction", "activity", "buy", "sell",
	"run date", "trade date", "settlement",
}

var (
	transactionHints = []string{"history", "transaction", "activity"}
	positionHints    = []string{"position", "holding", "portfolio"}
)

// normalizeHeader lower-cases a header cell, drops punctuation other than
// '-' and '/', and collapses whitespace.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '/':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func normalizeHeaders(record []string) []string {
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = normalizeHeader(cell)
	}
	return out
}

func anyCellContains(headers []string, needle string) bool {
	for _, h := range headers {
		if h != "" && strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func (k keyword) hit(headers []string) bool {
	if anyCellContains(headers, k.word) {
		return true
	}
	for _, a := range k.aliases {
		if anyCellContains(headers, a) {
			return true
		}
	}
	return false
}

func countHits(headers []string, keywords []keyword) int {
	n := 0
	for _, k := range keywords {
		if k.hit(headers) {
			n++
		}
	}
	return n
}

// filenameHint returns the file type implied by the filename, if exactly one
// kind of hint is present.
func filenameHint(filename string) (models.FileType, bool) {
	base := strings.ToLower(filepath.Base(filename))
	tx := containsAny(base, transactionHints)
	pos := containsAny(base, positionHints)
	switch {
	case tx && !pos:
		return models.FileTypeTransactions, true
	case pos && !tx:
		return models.FileTypePositions, true
	}
	return "", false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// detectHeader classifies one candidate header row.
func detectHeader(headers []string, filename string) (models.FileType, bool) {
	positions := countHits(headers, positionKeywords) >= 3

	hasDatePair := anyCellContains(headers, "date") &&
		(anyCellContains(headers, "symbol") || anyCellContains(headers, "ticker"))
	hint, hinted := filenameHint(filename)

	transactions := hasDatePair && countHits(headers, transactionKeywords) >= 4
	if hasDatePair && hinted && hint == models.FileTypeTransactions {
		transactions = true
	}

	switch {
	case positions && transactions:
		if hinted {
			return hint, true
		}
		for _, tok := range activityTokens {
			if anyCellContains(headers, tok) {
				return models.FileTypeTransactions, true
			}
		}
		if hasTradeDate(headers) && (anyCellContains(headers, "type") || anyCellContains(headers, "amount")) {
			return models.FileTypeTransactions, true
		}
		return models.FileTypePositions, true
	case transactions:
		return models.FileTypeTransactions, true
	case positions:
		return models.FileTypePositions, true
	}
	return "", false
}

// hasTradeDate reports a column dating each row, as opposed to dividend
// schedule columns such as "Ex-Date" or "Pay Date".
func hasTradeDate(headers []string) bool {
	for _, h := range headers {
		if h == "date" || strings.HasPrefix(h, "date ") {
			return true
		}
	}
	return false
}

// DetectFileType reports the file type of a single header row.
func DetectFileType(header []string, filename string) (models.FileType, bool) {
	return detectHeader(normalizeHeaders(header), filename)
}

// findHeader returns the index and type of the first record among the first
// headerScanLimit that looks like a header.
func findHeader(records [][]string, filename string) (int, models.FileType, bool) {
	limit := len(records)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		if ft, ok := DetectFileType(records[i], filename); ok {
			return i, ft, true
		}
	}
	return -1, "", false
}
