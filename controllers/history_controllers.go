package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
)

const dateLayout = "2006-01-02"

type HistoryController struct {
	Tables   *services.TableService
	Items    *services.ItemService
	Location *time.Location
	Now      func() time.Time
}

func NewHistoryController(tables *services.TableService, items *services.ItemService) *HistoryController {
	return &HistoryController{Tables: tables, Items: items, Location: time.Local, Now: time.Now}
}

type ClosedTable struct {
	models.Table
	OpenFor string             `json:"open_for"`
	Items   []models.OrderItem `json:"items"`
}

func (hc *HistoryController) parseDate(field, value string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, value, hc.Location)
	if err != nil {
		return time.Time{}, models.Invalid(field, "expected a date like %s", dateLayout)
	}
	return day, nil
}

// GetHistory -> tables closed on ?date= (default today) with their items
func (hc *HistoryController) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	day := hc.Now().In(hc.Location)
	if raw := c.Query("date"); raw != "" {
		var err error
		if day, err = hc.parseDate("date", raw); err != nil {
			respondServiceError(c, err)
			return
		}
	}

	tables, err := hc.Tables.ListClosedOn(ctx, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	history := make([]ClosedTable, 0, len(tables))
	for _, t := range tables {
		items, err := hc.Items.ListForTable(ctx, t.ID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		entry := ClosedTable{Table: t, Items: items}
		if t.ClosedAt != nil {
			entry.OpenFor = utils.FormatDuration(t.OpenedAt, *t.ClosedAt)
		}
		history = append(history, entry)
	}
	utils.RespondJSON(c, http.StatusOK, "Closed tables of "+day.Format(dateLayout), history)
}

// PurgeHistory -> deletes closed tables, only those closed before ?before=
// when given
func (hc *HistoryController) PurgeHistory(c *gin.Context) {
	var filter services.PurgeFilter
	if raw := c.Query("before"); raw != "" {
		before, err := hc.parseDate("before", raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		filter.ClosedBefore = &before
	}

	removed, err := hc.Tables.PurgeHistory(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "History purged", gin.H{"removed": removed})
}
