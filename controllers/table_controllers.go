package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/garcom-app/cart"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
)

type TableController struct {
	Tables *services.TableService
	Items  *services.ItemService
	Carts  *cart.Store
	Now    func() time.Time
}

func NewTableController(tables *services.TableService, items *services.ItemService, carts *cart.Store) *TableController {
	return &TableController{Tables: tables, Items: items, Carts: carts, Now: time.Now}
}

// TableSummary is one card of the open tables screen.
type TableSummary struct {
	models.Table
	PendingCount   int64  `json:"pending_count"`
	OpenFor        string `json:"open_for"`
	CartItems      int    `json:"cart_items"`
	EstimatedLabel string `json:"estimated_total_label"`
}

type TableDetail struct {
	Table   TableSummary       `json:"table"`
	Items   []models.OrderItem `json:"items"`
	HasCart bool               `json:"has_cart"`
}

// OpenSummaries builds the open tables screen. It is also the snapshot
// pushed to live table feeds.
func (tc *TableController) OpenSummaries(ctx context.Context) ([]TableSummary, error) {
	tables, err := tc.Tables.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	counts, err := tc.Tables.PendingCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]TableSummary, len(tables))
	for i, t := range tables {
		summaries[i] = tc.summarize(t)
		summaries[i].PendingCount = counts[t.ID]
	}
	return summaries, nil
}

func (tc *TableController) summarize(t models.Table) TableSummary {
	s := TableSummary{
		Table:          t,
		EstimatedLabel: utils.FormatCurrencyBRL(t.EstimatedTotal),
	}
	end := tc.Now()
	if t.ClosedAt != nil {
		end = *t.ClosedAt
	}
	s.OpenFor = utils.FormatDuration(t.OpenedAt, end)
	if c, ok := tc.Carts.Peek(t.ID); ok {
		s.CartItems = c.TotalItemCount()
	}
	return s
}

// GetOpenTables -> every table that is not closed, newest first
func (tc *TableController) GetOpenTables(c *gin.Context) {
	summaries, err := tc.OpenSummaries(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of open tables", summaries)
}

func (tc *TableController) OpenTable(c *gin.Context) {
	var req services.OpenTableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.Open(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table opened successfully", table)
}

// GetTable -> table with its items
func (tc *TableController) GetTable(c *gin.Context) {
	ctx := c.Request.Context()
	table, err := tc.Tables.Get(ctx, c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	items, err := tc.Items.ListForTable(ctx, table.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summary := tc.summarize(*table)
	for _, it := range items {
		if it.Outstanding() {
			summary.PendingCount++
		}
	}
	utils.RespondJSON(c, http.StatusOK, "Table details", TableDetail{
		Table:   summary,
		Items:   items,
		HasCart: summary.CartItems > 0,
	})
}

func (tc *TableController) GetTableItems(c *gin.Context) {
	items, err := tc.Items.ListForTable(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of items", items)
}

func (tc *TableController) MarkFinalizing(c *gin.Context) {
	table, err := tc.Tables.MarkFinalizing(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table is finalizing", table)
}

// CloseTable -> closes the table and drops any cart left behind
func (tc *TableController) CloseTable(c *gin.Context) {
	var body struct {
		PaymentNote string `json:"payment_note"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	table, err := tc.Tables.Close(c.Request.Context(), c.Param("table_id"), body.PaymentNote)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	tc.Carts.Discard(table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table closed", tc.summarize(*table))
}

// ForceLaunchStatus -> manual override from the status picker
func (tc *TableController) ForceLaunchStatus(c *gin.Context) {
	var body struct {
		LaunchStatus models.LaunchStatus `json:"launch_status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.ForceLaunchStatus(c.Request.Context(), c.Param("table_id"), body.LaunchStatus)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Launch status updated", table)
}

func (tc *TableController) RecomputeLaunchStatus(c *gin.Context) {
	status, err := tc.Tables.RecomputeLaunchStatus(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Launch status recomputed", gin.H{"launch_status": status})
}
