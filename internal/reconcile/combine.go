package reconcile

import "github.com/bobmcallan/vire-folio/internal/models"

// TransactionSymbols returns the set of symbols with at least one transaction.
func TransactionSymbols(transactions []models.Transaction) map[string]bool {
	out := make(map[string]bool)
	for _, tx := range transactions {
		out[tx.Symbol] = true
	}
	return out
}

// Combine merges transaction-derived holdings with snapshot holdings.
// A snapshot holding survives only when its symbol has no transactions;
// otherwise the derived holding replaces it. Allocation is recomputed over
// the union.
func Combine(derived, snapshot []models.Holding, txSymbols map[string]bool) []models.Holding {
	out := make([]models.Holding, 0, len(derived)+len(snapshot))
	out = append(out, derived...)
	for _, h := range snapshot {
		if txSymbols[h.Symbol] {
			continue
		}
		h.Source = models.SourceSnapshot
		out = append(out, h)
	}
	sortBySymbol(out)
	models.Allocate(out)
	return out
}
