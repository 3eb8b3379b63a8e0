package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"m3calc/config"
	"m3calc/models"
	"m3calc/utils"
)

// AggregateTier reads the Fuzzwork station aggregates in one batched call.
type AggregateTier struct {
	client  *Client
	baseURL string
	station int64
	logger  *utils.Logger
}

func NewAggregateTier(cfg *config.Config, client *Client, logger *utils.Logger) *AggregateTier {
	return &AggregateTier{
		client:  client,
		baseURL: strings.TrimRight(cfg.FuzzworkMarketURL, "/"),
		station: cfg.HubStation,
		logger:  logger,
	}
}

func (t *AggregateTier) Source() models.PriceSource { return models.SourceFuzzwork }

type fuzzworkSide struct {
	Max flexFloat `json:"max"`
	Min flexFloat `json:"min"`
}

type fuzzworkAggregate struct {
	Buy  fuzzworkSide `json:"buy"`
	Sell fuzzworkSide `json:"sell"`
}

// Fetch returns quotes for the ids Fuzzwork knows. Any failure yields an
// empty map.
func (t *AggregateTier) Fetch(ctx context.Context, ids []models.TypeID) map[models.TypeID]models.PriceQuote {
	out := make(map[models.TypeID]models.PriceQuote)
	if len(ids) == 0 {
		return out
	}

	reqURL := fmt.Sprintf("%s/aggregates/?station=%d&types=%s", t.baseURL, t.station, joinIDs(ids, ","))
	resp, err := t.client.get(ctx, reqURL)
	if err != nil {
		t.logger.Warn("[fuzzwork] Aggregates request failed: %v", err)
		return out
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		t.logger.Warn("[fuzzwork] Undecodable aggregates: %v", err)
		return out
	}

	for _, id := range ids {
		raw, ok := body[strconv.FormatInt(int64(id), 10)]
		if !ok {
			continue
		}
		var agg fuzzworkAggregate
		if err := json.Unmarshal(raw, &agg); err != nil {
			continue
		}
		q := models.PriceQuote{
			BuyMax:  agg.Buy.Max.positive(),
			SellMin: agg.Sell.Min.positive(),
			Source:  models.SourceFuzzwork,
		}
		if q.HasAny() {
			out[id] = q
		}
	}

	t.logger.Debug("[fuzzwork] Priced %d/%d types", len(out), len(ids))
	return out
}

func joinIDs(ids []models.TypeID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, sep)
}
