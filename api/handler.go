package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"m3calc/models"
	"m3calc/services"
	"m3calc/storage"
	"m3calc/utils"
)

const maxLabelsPerQuery = 200

// Handler serves one calculator session over HTTP.
type Handler struct {
	calc   *services.Calculator
	prices services.PriceRefresher
	sink   storage.ReportWriter
	runs   storage.RunLister
	logger *utils.Logger

	waitTimeout time.Duration
	now         func() time.Time
}

// Deps groups what the handler needs. Prices, Sink and Runs may be nil.
type Deps struct {
	Calc        *services.Calculator
	Prices      services.PriceRefresher
	Sink        storage.ReportWriter
	Runs        storage.RunLister
	Logger      *utils.Logger
	WaitTimeout time.Duration
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		calc:        d.Calc,
		prices:      d.Prices,
		sink:        d.Sink,
		runs:        d.Runs,
		logger:      d.Logger,
		waitTimeout: d.WaitTimeout,
		now:         time.Now,
	}
	if h.waitTimeout <= 0 {
		h.waitTimeout = 30 * time.Second
	}
	return h
}

//
// POST /api/calculate?sort=&dir=&prices=wait
//

func (h *Handler) Calculate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req calculateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if key, dir := c.Query("sort"), c.Query("dir"); key != "" || dir != "" {
			st, err := models.ParseSortState(key, dir)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			h.calc.SetSort(st)
		}

		h.respond(c, h.calc.Recompute(req.form()))
	}
}

//
// POST /api/reset
//

func (h *Handler) Reset() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form models.FormState
		if last := h.calc.Last(); last != nil {
			form = last.Form
		}
		form.ResetRates()
		h.respond(c, h.calc.Recompute(form))
	}
}

// respond starts enrichment, optionally waits for it, stores the report and
// writes it out.
func (h *Handler) respond(c *gin.Context, rep *models.Report) {
	done := h.calc.EnrichAsync(rep)

	if c.Query("prices") == "wait" && h.prices != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.waitTimeout)
		select {
		case <-done:
		case <-ctx.Done():
			h.logger.Warn("[api] Gave up waiting for prices of run %d: %v", rep.Generation, ctx.Err())
		}
		cancel()
		rep.Prices = h.prices.Snapshot(rep.LabelNames())
	}
	rep.Labels = services.SortLabelRows(rep.Labels, h.calc.Sort())

	dto := newReportDTO(rep, h.calc.Sort(), h.now())
	if h.sink != nil {
		if err := h.sink.Write(c.Request.Context(), rep); err != nil {
			h.logger.Warn("[api] Storing run %s failed: %v", rep.ID, err)
		} else {
			dto.Stored = true
		}
	}
	c.JSON(http.StatusOK, dto)
}

//
// GET /api/report
//

func (h *Handler) LastReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		rep := h.calc.Last()
		if rep == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "nothing calculated yet"})
			return
		}
		c.JSON(http.StatusOK, newReportDTO(rep, h.calc.Sort(), h.now()))
	}
}

//
// POST /api/sort/:key
//

func (h *Handler) ToggleSort() gin.HandlerFunc {
	return func(c *gin.Context) {
		parsed, err := models.ParseSortState(c.Param("key"), "")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st := h.calc.ToggleSort(parsed.Key)

		resp := gin.H{"sort": st, "labels": []labelRowDTO{}}
		if rep := h.calc.Last(); rep != nil {
			resp["labels"] = labelRows(rep.Labels, rep.Prices)
		}
		c.JSON(http.StatusOK, resp)
	}
}

//
// GET /api/prices?label=...&refresh=true
//

func (h *Handler) Prices() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.prices == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "price lookup disabled"})
			return
		}

		labels := utils.NewStringSet()
		for _, l := range c.QueryArray("label") {
			labels.Add(l)
		}
		if labels.Size() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one label is required"})
			return
		}
		if labels.Size() > maxLabelsPerQuery {
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many labels"})
			return
		}

		var quotes map[string]*models.PriceQuote
		if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
			ctx, cancel := context.WithTimeout(c.Request.Context(), h.waitTimeout)
			defer cancel()
			quotes = h.prices.Refresh(ctx, labels.Values())
		} else {
			quotes = h.prices.Snapshot(labels.Values())
		}

		out := make([]priceDTO, 0, labels.Size())
		for _, l := range labels.Values() {
			q := quotes[l]
			buy, sell, split := services.PriceCells(q)
			out = append(out, priceDTO{Label: l, Price: q, Buy: buy, Sell: sell, Split: split})
		}
		c.JSON(http.StatusOK, gin.H{"prices": out})
	}
}

//
// GET /api/runs?limit=
//

func (h *Handler) Runs() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.runs == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no run store configured"})
			return
		}

		limit := 20
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = n
		}

		runs, err := h.runs.ListRuns(c.Request.Context(), limit)
		if err != nil {
			h.logger.Error("[api] Listing runs failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list runs"})
			return
		}
		if runs == nil {
			runs = []models.RunSummary{}
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs})
	}
}
