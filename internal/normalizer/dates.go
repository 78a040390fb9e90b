package normalizer

import (
	"strings"
	"time"

	"github.com/bobmcallan/vire-folio/internal/models"
)

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"2006-01-02",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"02-Jan-2006",
	"January 2, 2006",
	time.RFC3339,
}

// ParseDate tries each known layout, then the first ten characters again
// (dates followed by "as of ..." suffixes). Unparseable input yields the zero Date.
func ParseDate(s string) models.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}
	}
	if d, ok := parseDateLayouts(s); ok {
		return d
	}
	if len(s) > 10 {
		if d, ok := parseDateLayouts(strings.TrimSpace(s[:10])); ok {
			return d
		}
	}
	return models.Date{}
}

func parseDateLayouts(s string) (models.Date, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), true
		}
	}
	return models.Date{}, false
}
