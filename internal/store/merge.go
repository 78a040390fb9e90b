// Package store merges incoming parse results into the persisted portfolio
// state and reads and writes that state through a RecordStore.
package store

import "github.com/bobmcallan/vire-folio/internal/models"

// MergeStats counts what a merge added and what it recognised as duplicate.
type MergeStats struct {
	TransactionsAdded     int  `json:"transactions_added"`
	TransactionsDuplicate int  `json:"transactions_duplicate"`
	TransactionsRejected  int  `json:"transactions_rejected"`
	DividendsAdded        int  `json:"dividends_added"`
	DividendsDuplicate    int  `json:"dividends_duplicate"`
	HoldingsReplaced      bool `json:"holdings_replaced"`
}

// Merge folds incoming into existing. Positions files replace the holding
// snapshot wholesale; transaction files leave holdings alone. Transactions and
// dividends are unioned by natural key: existing records keep their order and
// new ones are appended. Duplicates inside incoming collapse too. Incoming
// transactions failing Validate are dropped and counted as rejected.
func Merge(existing models.State, incoming *models.ParseResult) (models.State, MergeStats) {
	var stats MergeStats
	out := models.State{
		Holdings:     existing.Holdings,
		Transactions: existing.Transactions,
		Dividends:    existing.Dividends,
	}

	if incoming.FileType == models.FileTypePositions {
		out.Holdings = append([]models.Holding(nil), incoming.Holdings...)
		stats.HoldingsReplaced = true
	}

	valid := make([]models.Transaction, 0, len(incoming.Transactions))
	for _, tx := range incoming.Transactions {
		if tx.Validate() != nil {
			stats.TransactionsRejected++
			continue
		}
		valid = append(valid, tx)
	}

	out.Transactions, stats.TransactionsAdded, stats.TransactionsDuplicate =
		union(existing.Transactions, valid, models.Transaction.Key)
	out.Dividends, stats.DividendsAdded, stats.DividendsDuplicate =
		union(existing.Dividends, incoming.Dividends, models.DividendPayment.Key)

	return out, stats
}

func union[T any](existing, incoming []T, key func(T) string) ([]T, int, int) {
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]T, 0, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key(r)] = true
		out = append(out, r)
	}

	added, dup := 0, 0
	for _, r := range incoming {
		k := key(r)
		if seen[k] {
			dup++
			continue
		}
		seen[k] = true
		out = append(out, r)
		added++
	}
	return out, added, dup
}
