package market

import (
	"context"

	"m3calc/models"
	"m3calc/utils"
)

// Tier is one price source. Fetch returns quotes for the ids it could price
// and never fails as a whole; an unreachable source yields an empty map.
type Tier interface {
	Source() models.PriceSource
	Fetch(ctx context.Context, ids []models.TypeID) map[models.TypeID]models.PriceQuote
}

// Fetcher queries tiers in priority order. Each tier only sees the ids that
// earlier tiers left unpriced.
type Fetcher struct {
	tiers  []Tier
	logger *utils.Logger
}

func NewFetcher(logger *utils.Logger, tiers ...Tier) *Fetcher {
	return &Fetcher{tiers: tiers, logger: logger}
}

// FetchAll prices ids. Ids missing from the result are unpriced everywhere.
func (f *Fetcher) FetchAll(ctx context.Context, ids []models.TypeID) map[models.TypeID]models.PriceQuote {
	out := make(map[models.TypeID]models.PriceQuote, len(ids))
	remaining := uniqueIDs(ids)

	for _, tier := range f.tiers {
		if len(remaining) == 0 {
			break
		}
		got := tier.Fetch(ctx, remaining)

		asked := make(map[models.TypeID]models.PriceQuote, len(got))
		for _, id := range remaining {
			if q, ok := got[id]; ok && q.HasAny() {
				asked[id] = q
			}
		}
		added := MergeQuotes(out, asked)
		f.logger.Debug("[fetcher] %s priced %d of %d remaining", tier.Source(), added, len(remaining))

		remaining = unpriced(remaining, out)
	}

	if len(remaining) > 0 {
		f.logger.Info("[fetcher] %d type(s) without any price", len(remaining))
	}
	return out
}

// MergeQuotes copies quotes from src whose id is not yet in dst and returns
// how many were added. Existing entries are never replaced.
func MergeQuotes(dst, src map[models.TypeID]models.PriceQuote) int {
	added := 0
	for id, q := range src {
		if _, exists := dst[id]; exists {
			continue
		}
		dst[id] = q
		added++
	}
	return added
}

func uniqueIDs(ids []models.TypeID) []models.TypeID {
	seen := make(map[models.TypeID]struct{}, len(ids))
	out := make([]models.TypeID, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func unpriced(ids []models.TypeID, priced map[models.TypeID]models.PriceQuote) []models.TypeID {
	var out []models.TypeID
	for _, id := range ids {
		if _, ok := priced[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
