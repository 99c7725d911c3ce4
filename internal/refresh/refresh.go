package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/altura-labs/countryatlas/internal/clock"
	"github.com/altura-labs/countryatlas/internal/config"
	"github.com/altura-labs/countryatlas/internal/country/domain"
	"github.com/altura-labs/countryatlas/internal/observability/metrics"
	"github.com/altura-labs/countryatlas/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Renderer produces the summary artifact; it runs best-effort and its
// failures never reach the caller.
type Renderer interface {
	Render(total int64, top []*domain.CountryRecord, refreshedAt time.Time) error
}

// Result is the caller-visible outcome of a successful refresh.
type Result struct {
	TotalCountries  int64     `json:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Holder     *config.RefreshConfigHolder
	Repo       domain.Repository
	Countries  CountrySource
	Rates      RateSource
	Reconciler *Reconciler
	Renderer   Renderer
	Metrics    *metrics.RefreshMetrics `optional:"true"`
}

// Orchestrator runs the refresh pipeline: fetch both sources, reconcile,
// persist in batches, update the metadata singleton, then kick off the
// summary render in the background.
type Orchestrator struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	holder     *config.RefreshConfigHolder
	repo       domain.Repository
	countries  CountrySource
	rates      RateSource
	reconciler *Reconciler
	renderer   Renderer
	metrics    *metrics.RefreshMetrics

	// mu serializes refreshes so overlapping trigger calls cannot
	// interleave writes or produce inconsistent metadata snapshots.
	mu       sync.Mutex
	renderWG sync.WaitGroup
}

func New(p Params) *Orchestrator {
	return &Orchestrator{
		db:         p.DB,
		log:        p.Log.Named("refresh.orchestrator"),
		clock:      p.Clock,
		holder:     p.Holder,
		repo:       p.Repo,
		countries:  p.Countries,
		rates:      p.Rates,
		reconciler: p.Reconciler,
		renderer:   p.Renderer,
		metrics:    p.Metrics,
	}
}

func (o *Orchestrator) Refresh(ctx context.Context) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cfg := o.holder.Get()
	start := o.clock.Now().UTC()
	began := time.Now()

	var (
		countries []SourceCountry
		rates     map[string]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		countries, err = o.countries.FetchCountries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rates, err = o.rates.FetchRates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		// Fail-fast: nothing has been written yet.
		o.metrics.ObserveFailure("fetch_sources", time.Since(began))
		o.log.Warn("refresh aborted, source fetch failed", zap.Error(err))
		return Result{}, err
	}

	records := o.reconciler.Reconcile(countries, rates, start)

	for i := 0; i < len(records); i += cfg.BatchSize {
		end := min(i+cfg.BatchSize, len(records))
		if err := o.repo.UpsertBatch(ctx, o.db, records[i:end]); err != nil {
			// Batches committed before the fault stay committed.
			o.metrics.ObserveFailure("persist", time.Since(began))
			o.log.Error("refresh aborted, batch upsert failed",
				zap.Int("applied", i),
				zap.Int("reconciled", len(records)),
				zap.Bool("duplicate_key", db.IsDuplicateKeyErr(err)),
				zap.Error(err))
			return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	total, err := o.repo.Count(ctx, o.db)
	if err != nil {
		o.metrics.ObserveFailure("update_metadata", time.Since(began))
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	refreshedAt := start
	meta := &domain.RefreshMetadata{TotalCountries: total, LastRefreshedAt: &refreshedAt}
	if err := o.repo.UpsertMetadata(ctx, o.db, meta); err != nil {
		o.metrics.ObserveFailure("update_metadata", time.Since(began))
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	o.metrics.ObserveSuccess(time.Since(began))
	o.log.Info("refresh complete",
		zap.Int("reconciled", len(records)),
		zap.Int64("total_countries", total))

	o.renderWG.Add(1)
	go func() {
		defer o.renderWG.Done()
		o.renderSummary(total, start, cfg.TopN)
	}()

	return Result{TotalCountries: total, LastRefreshedAt: start}, nil
}

func (o *Orchestrator) renderSummary(total int64, refreshedAt time.Time, topN int) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("summary render panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	top, err := o.repo.TopByGDP(ctx, o.db, topN)
	if err != nil {
		o.log.Warn("summary render skipped, ranking query failed", zap.Error(err))
		return
	}
	if err := o.renderer.Render(total, top, refreshedAt); err != nil {
		o.log.Warn("summary render failed", zap.Error(err))
	}
}
