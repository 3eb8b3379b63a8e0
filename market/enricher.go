package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"m3calc/config"
	"m3calc/models"
	"m3calc/utils"
)

// Enricher turns labels into prices: resolve, fetch, cache.
type Enricher struct {
	resolver *Resolver
	fetcher  *Fetcher
	prices   *PriceCache
	logger   *utils.Logger
	closers  []func() error
}

// NewEnricher wires the parts together.
func NewEnricher(resolver *Resolver, fetcher *Fetcher, prices *PriceCache, logger *utils.Logger) *Enricher {
	return &Enricher{resolver: resolver, fetcher: fetcher, prices: prices, logger: logger}
}

// New builds the full price pipeline from cfg, including the transport.
func New(cfg *config.Config, logger *utils.Logger) (*Enricher, error) {
	ids, err := NewIDCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	prices, err := NewPriceCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	var (
		doer    Doer
		closers []func() error
	)
	switch cfg.Transport {
	case "browser":
		b, err := NewBrowserDoer(cfg.ChromeBin, cfg.HTTPTimeout, logger)
		if err != nil {
			return nil, fmt.Errorf("market: start browser transport: %w", err)
		}
		doer = b
		closers = append(closers, b.Close)
	default:
		doer = NewHTTPDoer(cfg.HTTPTimeout)
	}

	client := NewClient(doer, cfg.MaxRetries, 500*time.Millisecond, logger)
	fetcher := NewFetcher(logger,
		NewOrderBookTier(cfg, client, logger),
		NewAggregateTier(cfg, client, logger),
		NewMarketStatTier(cfg, client, logger),
	)

	e := NewEnricher(NewResolver(cfg, client, ids, logger), fetcher, prices, logger)
	e.closers = closers
	logger.Info("[market] Price lookups via %s transport", cfg.Transport)
	return e, nil
}

// Refresh resolves and prices labels and stores the outcome per label. Labels
// without an id or without any quote are cached as a confirmed nil.
func (e *Enricher) Refresh(ctx context.Context, labels []string) map[string]*models.PriceQuote {
	start := time.Now()
	idByLabel := e.resolver.ResolveAll(ctx, labels)

	ids := make([]models.TypeID, 0, len(idByLabel))
	for _, id := range idByLabel {
		if id > 0 {
			ids = append(ids, id)
		}
	}
	quotes := e.fetcher.FetchAll(ctx, ids)

	if ctx.Err() != nil {
		e.logger.Warn("[market] Refresh interrupted: %v", ctx.Err())
	}
	priced := 0
	for label, id := range idByLabel {
		if q, ok := quotes[id]; ok && id > 0 {
			e.prices.Set(label, &q)
			priced++
			continue
		}
		if ctx.Err() == nil {
			e.prices.Set(label, nil)
		}
	}

	e.logger.Info("[market] Priced %d/%d labels in %v", priced, len(idByLabel), time.Since(start).Round(time.Millisecond))
	return e.Snapshot(labels)
}

// Snapshot returns cached prices for labels without touching the network.
func (e *Enricher) Snapshot(labels []string) map[string]*models.PriceQuote {
	return e.prices.Snapshot(labels)
}

// Close releases the transport.
func (e *Enricher) Close() error {
	var errs []error
	for _, c := range e.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
