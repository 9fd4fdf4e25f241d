package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptonova/forecast-service/internal/models"
)

const syncTimeout = 5 * time.Minute

// SymbolSource lists the symbols to keep warm
type SymbolSource interface {
	GetTrackedSymbols() ([]*models.TrackedSymbol, error)
}

// Refresher pulls fresh upstream history through the provider layers
type Refresher interface {
	Refresh(ctx context.Context, symbol string, days int) ([]models.PricePoint, error)
}

// Retention prunes stored history past the retention window
type Retention interface {
	DeletePriceHistoryOlderThan(cutoff time.Time) (int64, error)
}

// PriceSyncJob refreshes price history for every tracked symbol and prunes
// observations past the retention window. Per-symbol failures are logged
// and skipped; one bad symbol never blocks the rest of the sync.
type PriceSyncJob struct {
	symbols       SymbolSource
	provider      Refresher
	retention     Retention
	historyDays   int
	retentionDays int
	log           zerolog.Logger
}

// NewPriceSyncJob creates the periodic price sync job.
// retention may be nil or retentionDays zero to disable pruning.
func NewPriceSyncJob(symbols SymbolSource, provider Refresher, retention Retention, historyDays, retentionDays int, log zerolog.Logger) *PriceSyncJob {
	return &PriceSyncJob{
		symbols:       symbols,
		provider:      provider,
		retention:     retention,
		historyDays:   historyDays,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "price_sync").Logger(),
	}
}

// Name implements Job
func (j *PriceSyncJob) Name() string { return "price_sync" }

// Run implements Job
func (j *PriceSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	symbols, err := j.symbols.GetTrackedSymbols()
	if err != nil {
		return fmt.Errorf("failed to list tracked symbols: %w", err)
	}

	synced, failed := 0, 0
	for _, s := range symbols {
		if _, err := j.provider.Refresh(ctx, s.Symbol, j.historyDays); err != nil {
			failed++
			j.log.Warn().Err(err).Str("symbol", s.Symbol).Msg("Symbol sync failed")
			continue
		}
		synced++
	}

	if j.retention != nil && j.retentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
		deleted, err := j.retention.DeletePriceHistoryOlderThan(cutoff)
		if err != nil {
			j.log.Warn().Err(err).Msg("History pruning failed")
		} else if deleted > 0 {
			j.log.Info().Int64("rows", deleted).Msg("Pruned old price history")
		}
	}

	j.log.Info().Int("synced", synced).Int("failed", failed).Msg("Price sync finished")
	return nil
}
