package normalizer

import (
	"regexp"
	"strings"
)

var (
	symbolPattern       = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-/]{0,14}$`)
	parenSymbolPattern  = regexp.MustCompile(`\(([A-Z0-9][A-Z0-9.\-/]{0,14})\)`)
	dividendOnPattern   = regexp.MustCompile(`(?i)\bdiv(?:idend)?\s+on\s+(.+)$`)
	trailingParenthesis = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// brokerPrefixes are action phrases brokers prepend to security names.
// Longer phrases come first so "YOU BOUGHT" wins over "BOUGHT".
var brokerPrefixes = []string{
	"DIVIDEND RECEIVED",
	"REINVESTMENT",
	"YOU BOUGHT",
	"YOU SOLD",
	"QUALIFIED DIVIDEND",
	"NON-QUALIFIED DIVIDEND",
	"FOREIGN TAX PAID",
	"LONG-TERM CAP GAIN",
	"SHORT-TERM CAP GAIN",
	"TRANSFER OF ASSETS",
	"DIVIDEND",
	"BOUGHT",
	"SOLD",
	"BUY",
	"SELL",
}

// CleanSymbol trims, strips '*' markers and upper-cases a symbol cell.
// It returns "" when the result does not look like a ticker.
func CleanSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(s, "*", "")))
	if !symbolPattern.MatchString(s) {
		return ""
	}
	return s
}

// SymbolFromDescription finds a "(SYMBOL)" marker in free text.
func SymbolFromDescription(desc string) string {
	for _, m := range parenSymbolPattern.FindAllStringSubmatch(strings.ToUpper(desc), -1) {
		// "(Cash)" and "(Margin)" markers are account types, not tickers.
		switch m[1] {
		case "CASH", "MARGIN":
			continue
		}
		return m[1]
	}
	return ""
}

// ExtractCompanyName derives a security name from a broker description,
// trying each pattern in priority order.
func ExtractCompanyName(desc, symbol string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}
	upper := strings.ToUpper(desc)

	if symbol != "" {
		if idx := strings.Index(upper, "("+symbol+")"); idx > 0 {
			if name := stripBrokerPrefix(desc[:idx]); name != "" {
				return name
			}
		}

		if strings.HasPrefix(upper, symbol+" ") {
			if name := stripBrokerPrefix(desc[len(symbol)+1:]); name != "" {
				return name
			}
		}

		// Names usually follow the symbol, so the last non-empty part wins.
		if parts := splitOnWord(desc, symbol); len(parts) > 1 {
			for i := len(parts) - 1; i >= 0; i-- {
				if name := stripBrokerPrefix(parts[i]); name != "" {
					return name
				}
			}
		}
	}

	if m := dividendOnPattern.FindStringSubmatch(desc); m != nil {
		if name := strings.TrimSpace(trailingParenthesis.ReplaceAllString(m[1], "")); name != "" {
			return name
		}
	}

	if name := stripBrokerPrefix(desc); name != "" {
		return name
	}
	return desc
}

// splitOnWord splits s around whole-word occurrences of word, ignoring ASCII
// case. Word boundaries follow regexp \b.
func splitOnWord(s, word string) []string {
	if word == "" {
		return []string{s}
	}
	hay, needle := asciiUpper(s), asciiUpper(word)

	var parts []string
	start := 0
	for i := 0; i < len(hay); {
		j := strings.Index(hay[i:], needle)
		if j < 0 {
			break
		}
		j += i
		end := j + len(needle)
		if atBoundary(hay, j) && atBoundary(hay, end) {
			parts = append(parts, s[start:j])
			start, i = end, end
			continue
		}
		i = j + 1
	}
	return append(parts, s[start:])
}

// asciiUpper upper-cases ASCII letters only, so byte offsets match s.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

func atBoundary(s string, i int) bool {
	before := i > 0 && isWordByte(s[i-1])
	after := i < len(s) && isWordByte(s[i])
	return before != after
}

func isWordByte(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z'
}

func stripBrokerPrefix(s string) string {
	s = strings.TrimSpace(s)
	for {
		upper := strings.ToUpper(s)
		trimmed := false
		for _, p := range brokerPrefixes {
			if strings.HasPrefix(upper, p+" ") || upper == p {
				s = strings.TrimSpace(s[len(p):])
				trimmed = true
				break
			}
		}
		if !trimmed {
			break
		}
	}
	s = trailingParenthesis.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "-:,"))
}
