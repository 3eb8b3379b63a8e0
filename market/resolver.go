package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"m3calc/config"
	"m3calc/models"
	"m3calc/utils"
)

// Resolver maps item names to type identifiers using the ESI strict search
// and, failing that, the Fuzzwork typeid lookup.
type Resolver struct {
	client      *Client
	esiBaseURL  string
	fuzzworkURL string
	language    string
	cache       *IDCache
	logger      *utils.Logger

	inflight singleflight.Group
}

// NewResolver creates a Resolver backed by cache.
func NewResolver(cfg *config.Config, client *Client, cache *IDCache, logger *utils.Logger) *Resolver {
	return &Resolver{
		client:      client,
		esiBaseURL:  strings.TrimRight(cfg.ESIBaseURL, "/"),
		fuzzworkURL: strings.TrimRight(cfg.FuzzworkBaseURL, "/"),
		language:    cfg.SearchLanguage,
		cache:       cache,
		logger:      logger,
	}
}

// ResolveAll resolves every distinct non-empty label concurrently. Each label
// maps to its identifier, or 0 when neither source knows it.
func (r *Resolver) ResolveAll(ctx context.Context, labels []string) map[string]models.TypeID {
	unique := utils.NewStringSet()
	for _, l := range labels {
		if l != "" {
			unique.Add(l)
		}
	}

	var mu sync.Mutex
	out := make(map[string]models.TypeID, unique.Size())

	g, gctx := errgroup.WithContext(ctx)
	for _, label := range unique.Values() {
		g.Go(func() error {
			id := r.Resolve(gctx, label)
			mu.Lock()
			out[label] = id
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Resolve returns the identifier for label, or 0. Results, including misses,
// are cached; concurrent calls for the same label share one lookup.
func (r *Resolver) Resolve(ctx context.Context, label string) models.TypeID {
	if id, ok := r.cache.Get(label); ok {
		return id
	}

	v, _, _ := r.inflight.Do(label, func() (any, error) {
		if id, ok := r.cache.Get(label); ok {
			return id, nil
		}

		id, err := r.searchESI(ctx, label)
		if err != nil {
			r.logger.Debug("[resolver] ESI search for %q failed: %v", label, err)
			id, err = r.searchFuzzwork(ctx, label)
			if err != nil {
				r.logger.Debug("[resolver] Fuzzwork lookup for %q failed: %v", label, err)
			}
		}

		if ctx.Err() != nil && id == 0 {
			return models.TypeID(0), nil
		}
		if id == 0 {
			r.logger.Warn("[resolver] No type id for %q", label)
		}
		r.cache.Set(label, id)
		return id, nil
	})
	return v.(models.TypeID)
}

type esiSearchResponse struct {
	InventoryType []flexFloat `json:"inventory_type"`
}

func (r *Resolver) searchESI(ctx context.Context, label string) (models.TypeID, error) {
	reqURL := fmt.Sprintf("%s/latest/search/?categories=inventory_type&language=%s&search=%s&strict=true",
		r.esiBaseURL, url.QueryEscape(r.language), url.QueryEscape(label))

	resp, err := r.client.get(ctx, reqURL)
	if err != nil {
		return 0, err
	}
	var body esiSearchResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, fmt.Errorf("market: decode esi search: %w", err)
	}
	if len(body.InventoryType) == 0 {
		return 0, fmt.Errorf("market: esi search: no match for %q", label)
	}
	id := body.InventoryType[0].id()
	if id == 0 {
		return 0, fmt.Errorf("market: esi search: invalid id for %q", label)
	}
	return models.TypeID(id), nil
}

type fuzzworkTypeIDResponse struct {
	TypeID flexFloat `json:"typeID"`
}

func (r *Resolver) searchFuzzwork(ctx context.Context, label string) (models.TypeID, error) {
	reqURL := fmt.Sprintf("%s/api/typeid.php?typename=%s", r.fuzzworkURL, url.QueryEscape(label))

	resp, err := r.client.get(ctx, reqURL)
	if err != nil {
		return 0, err
	}
	var body fuzzworkTypeIDResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, fmt.Errorf("market: decode fuzzwork typeid: %w", err)
	}
	id := body.TypeID.id()
	if id == 0 {
		return 0, fmt.Errorf("market: fuzzwork typeid: no match for %q", label)
	}
	return models.TypeID(id), nil
}
