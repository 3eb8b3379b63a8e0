package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"m3calc/config"
	"m3calc/models"
	"m3calc/utils"
)

// OrderBookTier reads the regional ESI order book and keeps the best prices
// at the hub station.
type OrderBookTier struct {
	client      *Client
	baseURL     string
	region      int64
	station     int64
	maxPages    int
	workers     int
	rateLimitMs int
	logger      *utils.Logger
}

// NewOrderBookTier creates the primary price tier.
func NewOrderBookTier(cfg *config.Config, client *Client, logger *utils.Logger) *OrderBookTier {
	return &OrderBookTier{
		client:      client,
		baseURL:     strings.TrimRight(cfg.ESIBaseURL, "/"),
		region:      cfg.MarketRegion,
		station:     cfg.HubStation,
		maxPages:    cfg.MaxOrderPages,
		workers:     cfg.MaxConcurrency,
		rateLimitMs: cfg.RateLimitMs,
		logger:      logger,
	}
}

func (t *OrderBookTier) Source() models.PriceSource { return models.SourceESI }

// Fetch prices ids on a bounded pool. Ids without any hub order are left out.
func (t *OrderBookTier) Fetch(ctx context.Context, ids []models.TypeID) map[models.TypeID]models.PriceQuote {
	out := make(map[models.TypeID]models.PriceQuote, len(ids))
	var mu sync.Mutex

	pool := utils.NewWorkerPool(t.workers, t.rateLimitMs)
	for _, id := range ids {
		pool.Submit(func() {
			q, ok := t.fetchOne(ctx, id)
			if !ok {
				return
			}
			mu.Lock()
			out[id] = q
			mu.Unlock()
		})
	}
	pool.Wait()

	t.logger.Debug("[esi] Priced %d/%d types", len(out), len(ids))
	return out
}

func (t *OrderBookTier) fetchOne(ctx context.Context, id models.TypeID) (models.PriceQuote, bool) {
	var sell, buy *float64

	var g errgroup.Group
	g.Go(func() error {
		sell = t.bestPrice(ctx, id, "sell")
		return nil
	})
	g.Go(func() error {
		buy = t.bestPrice(ctx, id, "buy")
		return nil
	})
	_ = g.Wait()

	if sell == nil && buy == nil {
		return models.PriceQuote{}, false
	}
	return models.PriceQuote{BuyMax: buy, SellMin: sell, Source: models.SourceESI}, true
}

type esiOrder struct {
	LocationID int64    `json:"location_id"`
	Price      *float64 `json:"price"`
}

// bestPrice walks the order pages for one side. The page count comes from
// X-Pages and is capped at maxPages. A failed page ends the walk; an
// undecodable page counts as empty.
func (t *OrderBookTier) bestPrice(ctx context.Context, id models.TypeID, side string) *float64 {
	best := math.Inf(1)
	if side == "buy" {
		best = math.Inf(-1)
	}

	pages := 1
	for page := 1; page <= pages && page <= t.maxPages; page++ {
		reqURL := fmt.Sprintf("%s/latest/markets/%d/orders/?order_type=%s&type_id=%d&page=%d",
			t.baseURL, t.region, side, id, page)

		resp, err := t.client.get(ctx, reqURL)
		if err != nil {
			t.logger.Debug("[esi] %s orders for %d, page %d: %v", side, id, page, err)
			break
		}
		if n, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("X-Pages"))); err == nil && n > pages {
			pages = n
		}

		var orders []esiOrder
		if err := json.Unmarshal(resp.Body, &orders); err != nil {
			t.logger.Debug("[esi] Undecodable %s page %d for %d: %v", side, page, id, err)
			orders = nil
		}
		for _, o := range orders {
			if o.LocationID != t.station || o.Price == nil || math.IsNaN(*o.Price) {
				continue
			}
			if side == "sell" {
				best = math.Min(best, *o.Price)
			} else {
				best = math.Max(best, *o.Price)
			}
		}
	}

	if math.IsInf(best, 0) {
		return nil
	}
	return &best
}
