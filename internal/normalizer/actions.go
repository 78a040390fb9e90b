package normalizer

import (
	"strings"

	"github.com/bobmcallan/vire-folio/internal/models"
)

type actionRule struct {
	typ      models.TransactionType
	keywords []string
}

// verbRules match at the start of the text. Broker activity columns put the
// verb first and the security name after it, and the name may itself contain
// "dividend" or "tax".
var verbRules = []actionRule{
	{models.TransactionBuy, []string{"you bought", "bought", "buy", "purchase", "reinvest"}},
	{models.TransactionSell, []string{"you sold", "sold", "sell", "redemption"}},
}

// actionRules are searched anywhere in the text; the keyword occurring
// earliest wins, and on the same position the earlier rule wins.
var actionRules = []actionRule{
	{models.TransactionSplit, []string{"split"}},
	{models.TransactionTax, []string{"tax", "withholding", "withheld"}},
	{models.TransactionDividend, []string{"dividend", "distribution", " div "}},
	{models.TransactionBuy, []string{"bought", "buy", "purchase"}},
	{models.TransactionSell, []string{"sold", "sell", "redemption"}},
	{models.TransactionFee, []string{"fee", "commission", "charge"}},
	{models.TransactionTransfer, []string{"transfer", "journal", "deposit", "withdrawal", "contribution"}},
}

// ClassifyAction returns the transaction type of the first text (action, then
// type column, then description) that any rule recognises. Reinvestments are
// purchases wherever the word appears.
func ClassifyAction(texts ...string) (models.TransactionType, bool) {
	for _, text := range texts {
		if typ, ok := classifyText(text); ok {
			return typ, true
		}
	}
	return "", false
}

func classifyText(text string) (models.TransactionType, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}
	for _, rule := range verbRules {
		for _, kw := range rule.keywords {
			if strings.HasPrefix(lower, kw) {
				return rule.typ, true
			}
		}
	}
	if strings.Contains(lower, "reinvest") {
		return models.TransactionBuy, true
	}

	padded := " " + lower + " "
	best, found := -1, models.TransactionType("")
	for _, rule := range actionRules {
		for _, kw := range rule.keywords {
			if i := strings.Index(padded, kw); i >= 0 && (best < 0 || i < best) {
				best, found = i, rule.typ
			}
		}
	}
	return found, best >= 0
}

// ParseFrequency maps free-text cadences ("Monthly", "Semi-Annually", "Q")
// onto a Frequency.
func ParseFrequency(s string) (models.Frequency, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "", false
	case strings.HasPrefix(s, "semi"), strings.Contains(s, "half"), s == "s":
		return models.FrequencySemiAnnual, true
	case strings.HasPrefix(s, "month"), s == "m":
		return models.FrequencyMonthly, true
	case strings.HasPrefix(s, "quarter"), s == "q":
		return models.FrequencyQuarterly, true
	case strings.HasPrefix(s, "annual"), strings.HasPrefix(s, "year"), s == "a":
		return models.FrequencyAnnual, true
	case strings.HasPrefix(s, "irregular"), strings.HasPrefix(s, "special"):
		return models.FrequencyIrregular, true
	}
	return "", false
}
