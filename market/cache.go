package market

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"m3calc/models"
)

// IDCache maps labels to resolved type identifiers. A stored zero means the
// label is known not to resolve.
type IDCache struct {
	lru *lru.Cache[string, models.TypeID]
}

// NewIDCache creates a cache holding at most size labels.
func NewIDCache(size int) (*IDCache, error) {
	c, err := lru.New[string, models.TypeID](size)
	if err != nil {
		return nil, fmt.Errorf("market: create id cache: %w", err)
	}
	return &IDCache{lru: c}, nil
}

// Get returns the cached identifier and whether the label was looked up before.
func (c *IDCache) Get(label string) (models.TypeID, bool) {
	return c.lru.Get(label)
}

// Set records a resolution; id <= 0 records a confirmed miss.
func (c *IDCache) Set(label string, id models.TypeID) {
	if id < 0 {
		id = 0
	}
	c.lru.Add(label, id)
}

func (c *IDCache) Len() int { return c.lru.Len() }

// PriceCache maps labels to quotes. A stored nil is a confirmed "no price";
// a missing key means the label has not been priced yet.
type PriceCache struct {
	lru *lru.Cache[string, *models.PriceQuote]
}

// NewPriceCache creates a cache holding at most size labels.
func NewPriceCache(size int) (*PriceCache, error) {
	c, err := lru.New[string, *models.PriceQuote](size)
	if err != nil {
		return nil, fmt.Errorf("market: create price cache: %w", err)
	}
	return &PriceCache{lru: c}, nil
}

func (c *PriceCache) Get(label string) (*models.PriceQuote, bool) {
	return c.lru.Get(label)
}

func (c *PriceCache) Set(label string, q *models.PriceQuote) {
	c.lru.Add(label, q)
}

// Snapshot copies the entries for labels that have been priced.
func (c *PriceCache) Snapshot(labels []string) map[string]*models.PriceQuote {
	out := make(map[string]*models.PriceQuote, len(labels))
	for _, l := range labels {
		if q, ok := c.lru.Get(l); ok {
			out[l] = q
		}
	}
	return out
}
