// Package portfolio runs the import pipeline and answers portfolio queries.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/vire-folio/internal/cache"
	"github.com/bobmcallan/vire-folio/internal/common"
	"github.com/bobmcallan/vire-folio/internal/interfaces"
	"github.com/bobmcallan/vire-folio/internal/models"
	"github.com/bobmcallan/vire-folio/internal/period"
	"github.com/bobmcallan/vire-folio/internal/projection"
	"github.com/bobmcallan/vire-folio/internal/reconcile"
	"github.com/bobmcallan/vire-folio/internal/store"
)

// ImportResult reports the outcome of one import.
type ImportResult struct {
	ImportID     string           `json:"import_id"`
	Filename     string           `json:"filename"`
	FileType     models.FileType  `json:"file_type"`
	Stats        store.MergeStats `json:"stats"`
	SkippedRows  int              `json:"skipped_rows"`
	Holdings     int              `json:"holdings"`
	Transactions int              `json:"transactions"`
	Dividends    int              `json:"dividends"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used as the as-of date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the single writer over the persisted portfolio. Imports and
// clears are serialized; reads go through the view cache.
type Service struct {
	mu     sync.Mutex
	store  *store.Store
	parser interfaces.Parser
	cache  *cache.ViewCache
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(st *store.Store, parser interfaces.Parser, views *cache.ViewCache, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		parser: parser,
		cache:  views,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import parses data, merges it into the persisted state, rebuilds holdings
// and saves. On any error the persisted state and cached views are unchanged.
func (s *Service) Import(ctx context.Context, data []byte, filename string) (*ImportResult, error) {
	importID := uuid.New().String()
	log := s.logger.WithCorrelationId(importID)

	parsed, err := s.parser.Parse(ctx, data, filename)
	if err != nil {
		log.Warn().Str("file", filename).Err(err).Msg("Import parse failed")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.Load(ctx)
	if err != nil {
		log.Error().Str("file", filename).Err(err).Msg("Import load failed")
		return nil, err
	}

	merged, stats := store.Merge(existing, parsed)
	merged.Holdings = s.rebuildHoldings(merged)

	if err := s.store.Save(ctx, merged); err != nil {
		log.Error().Str("file", filename).Err(err).Msg("Import save failed")
		return nil, err
	}
	s.cache.Clear()

	result := &ImportResult{
		ImportID:     importID,
		Filename:     filename,
		FileType:     parsed.FileType,
		Stats:        stats,
		SkippedRows:  parsed.SkippedRows,
		Holdings:     len(merged.Holdings),
		Transactions: len(merged.Transactions),
		Dividends:    len(merged.Dividends),
	}
	log.Info().
		Str("file", filename).
		Str("type", string(parsed.FileType)).
		Int("tx_added", stats.TransactionsAdded).
		Int("tx_duplicate", stats.TransactionsDuplicate).
		Int("tx_rejected", stats.TransactionsRejected).
		Int("div_added", stats.DividendsAdded).
		Int("skipped", parsed.SkippedRows).
		Int("holdings", result.Holdings).
		Msg("Import complete")
	return result, nil
}

// rebuildHoldings replays the transaction log when one exists and keeps
// snapshot holdings only for symbols the log never mentions.
func (s *Service) rebuildHoldings(state models.State) []models.Holding {
	if len(state.Transactions) == 0 {
		holdings := append([]models.Holding(nil), state.Holdings...)
		models.Allocate(holdings)
		return holdings
	}
	derived := reconcile.Reconcile(state.Transactions, state.Dividends, s.now())
	return reconcile.Combine(derived, state.Holdings, reconcile.TransactionSymbols(state.Transactions))
}

// Clear removes every persisted record.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.cache.Clear()
	s.logger.Info().Msg("Portfolio data cleared")
	return nil
}

// Holdings returns the current holdings sorted by symbol. The returned slice
// is shared with the cache and must not be modified.
func (s *Service) Holdings(ctx context.Context) ([]models.Holding, error) {
	return cache.GetOrCompute(s.cache, cache.MakeKey("holdings"), func() ([]models.Holding, error) {
		state, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		return state.Holdings, nil
	})
}

// Transactions returns the transaction log in date order, optionally
// restricted to one symbol.
func (s *Service) Transactions(ctx context.Context, symbol string) ([]models.Transaction, error) {
	symbol = normalizeSymbol(symbol)
	return cache.GetOrCompute(s.cache, cache.MakeKey("transactions", symbol), func() ([]models.Transaction, error) {
		state, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.Transaction, 0, len(state.Transactions))
		for _, tx := range state.Transactions {
			if symbol == "" || tx.Symbol == symbol {
				out = append(out, tx)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return out, nil
	})
}

// Dividends returns dividend payments in date order, optionally restricted
// to one symbol.
func (s *Service) Dividends(ctx context.Context, symbol string) ([]models.DividendPayment, error) {
	symbol = normalizeSymbol(symbol)
	return cache.GetOrCompute(s.cache, cache.MakeKey("dividends", symbol), func() ([]models.DividendPayment, error) {
		state, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.DividendPayment, 0, len(state.Dividends))
		for _, d := range state.Dividends {
			if symbol == "" || d.Symbol == symbol {
				out = append(out, d)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return out, nil
	})
}

// IncomeProjection is twelve months of projected income plus the dividend
// profile of every symbol with payment history.
type IncomeProjection struct {
	AsOf     models.Date              `json:"as_of"`
	Months   []models.MonthProjection `json:"months"`
	Total    float64                  `json:"total"`
	Profiles []models.DividendProfile `json:"profiles"`
}

// Projection projects income for the next twelve months from today.
func (s *Service) Projection(ctx context.Context) (*IncomeProjection, error) {
	asOf := s.now()
	key := cache.MakeKey("projection", models.DateOf(asOf).String())
	return cache.GetOrCompute(s.cache, key, func() (*IncomeProjection, error) {
		state, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		months := projection.Project(state.Holdings, state.Dividends, asOf)

		analyzed := projection.Analyze(state.Dividends, asOf)
		profiles := make([]models.DividendProfile, 0, len(analyzed))
		for _, p := range analyzed {
			profiles = append(profiles, p)
		}
		sort.Slice(profiles, func(i, j int) bool { return profiles[i].Symbol < profiles[j].Symbol })

		return &IncomeProjection{
			AsOf:     models.DateOf(asOf),
			Months:   months,
			Total:    projection.Total(months),
			Profiles: profiles,
		}, nil
	})
}

// Period filters the transaction log and dividends to p.
func (s *Service) Period(ctx context.Context, p period.Period, months []string) (*period.Result, error) {
	asOf := s.now()
	args := append([]string{string(p), models.DateOf(asOf).String()}, months...)
	return cache.GetOrCompute(s.cache, cache.MakeKey("period", args...), func() (*period.Result, error) {
		state, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		res, err := period.Filter(state.Transactions, state.Dividends, p, months, asOf)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", p, err)
		}
		return &res, nil
	})
}

// Summary is the portfolio-level roll-up.
type Summary struct {
	AsOf              models.Date `json:"as_of"`
	Holdings          int         `json:"holdings"`
	Transactions      int         `json:"transactions"`
	Dividends         int         `json:"dividends"`
	TotalValue        float64     `json:"total_value"`
	TotalCost         float64     `json:"total_cost"`
	TotalGain         float64     `json:"total_gain"`
	GainPercent       float64     `json:"gain_percent"`
	AnnualIncome      float64     `json:"annual_income"`
	Yield             float64     `json:"yield"`
	DividendsReceived float64     `json:"dividends_received"`
	ProjectedIncome   float64     `json:"projected_income"`
}

// Summary totals the portfolio.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	asOf := s.now()
	key := cache.MakeKey("summary", models.DateOf(asOf).String())
	return cache.GetOrCompute(s.cache, key, func() (*Summary, error) {
		state, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		sum := &Summary{
			AsOf:         models.DateOf(asOf),
			Holdings:     len(state.Holdings),
			Transactions: len(state.Transactions),
			Dividends:    len(state.Dividends),
		}
		for _, h := range state.Holdings {
			sum.TotalValue += h.CurrentValue
			sum.TotalCost += h.TotalCost
			sum.AnnualIncome += h.AnnualIncome
		}
		sum.TotalGain = sum.TotalValue - sum.TotalCost
		if sum.TotalCost > 0 {
			sum.GainPercent = sum.TotalGain / sum.TotalCost * 100
		}
		if sum.TotalValue > 0 {
			sum.Yield = sum.AnnualIncome / sum.TotalValue * 100
		}
		for _, d := range state.Dividends {
			sum.DividendsReceived += d.Amount
		}
		sum.ProjectedIncome = projection.Total(projection.Project(state.Holdings, state.Dividends, asOf))
		return sum, nil
	})
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
