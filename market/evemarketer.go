package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"m3calc/config"
	"m3calc/models"
	"m3calc/utils"
)

// MarketStatTier reads EVEMarketer marketstat for the hub system.
type MarketStatTier struct {
	client  *Client
	baseURL string
	system  int64
	logger  *utils.Logger
}

func NewMarketStatTier(cfg *config.Config, client *Client, logger *utils.Logger) *MarketStatTier {
	return &MarketStatTier{
		client:  client,
		baseURL: strings.TrimRight(cfg.EVEMarketerBaseURL, "/"),
		system:  cfg.HubSystem,
		logger:  logger,
	}
}

func (t *MarketStatTier) Source() models.PriceSource { return models.SourceEVEMarketer }

type marketStatSide struct {
	Max      flexFloat `json:"max"`
	Min      flexFloat `json:"min"`
	ForQuery struct {
		Types []flexFloat `json:"types"`
	} `json:"forQuery"`
}

// typeRef is either a bare id or an object carrying one.
type typeRef struct {
	flexFloat
}

func (r *typeRef) UnmarshalJSON(b []byte) error {
	if trimmed := strings.TrimSpace(string(b)); strings.HasPrefix(trimmed, "{") {
		var obj struct {
			ID flexFloat `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err == nil {
			r.flexFloat = obj.ID
		}
		return nil
	}
	return r.flexFloat.UnmarshalJSON(b)
}

type marketStatEntry struct {
	ID     flexFloat      `json:"id"`
	Type   typeRef        `json:"type"`
	TypeID flexFloat      `json:"typeID"`
	Buy    marketStatSide `json:"buy"`
	Sell   marketStatSide `json:"sell"`
}

// typeID finds the identifier in whichever field the response used.
func (e marketStatEntry) typeID() models.TypeID {
	for _, f := range []flexFloat{e.ID, e.Type.flexFloat, e.TypeID} {
		if id := f.id(); id > 0 {
			return models.TypeID(id)
		}
	}
	for _, side := range []marketStatSide{e.Buy, e.Sell} {
		if len(side.ForQuery.Types) > 0 {
			if id := side.ForQuery.Types[0].id(); id > 0 {
				return models.TypeID(id)
			}
		}
	}
	return 0
}

type marketStatEnvelope struct {
	MarketStat struct {
		Type json.RawMessage `json:"type"`
	} `json:"marketstat"`
}

// Fetch returns quotes for the requested ids found in the response. Any
// failure yields an empty map.
func (t *MarketStatTier) Fetch(ctx context.Context, ids []models.TypeID) map[models.TypeID]models.PriceQuote {
	out := make(map[models.TypeID]models.PriceQuote)
	if len(ids) == 0 {
		return out
	}

	reqURL := fmt.Sprintf("%s/ec/marketstat/json?usesystem=%d&typeid=%s",
		t.baseURL, t.system, joinIDs(ids, "&typeid="))
	resp, err := t.client.get(ctx, reqURL)
	if err != nil {
		t.logger.Warn("[evemarketer] Marketstat request failed: %v", err)
		return out
	}

	for _, raw := range marketStatEntries(resp.Body) {
		var e marketStatEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		id := e.typeID()
		if id == 0 {
			continue
		}
		q := models.PriceQuote{
			BuyMax:  e.Buy.Max.positive(),
			SellMin: e.Sell.Min.positive(),
			Source:  models.SourceEVEMarketer,
		}
		if q.HasAny() {
			out[id] = q
		}
	}

	t.logger.Debug("[evemarketer] Priced %d/%d types", len(out), len(ids))
	return out
}

// marketStatEntries accepts a flat list or {marketstat:{type: obj|[obj]}}.
func marketStatEntries(body []byte) []json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		return decodeList(json.RawMessage(trimmed))
	}
	var env marketStatEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	return decodeList(env.MarketStat.Type)
}
