package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
)

type ItemController struct {
	Items *services.ItemService
}

func NewItemController(items *services.ItemService) *ItemController {
	return &ItemController{Items: items}
}

func (ic *ItemController) GetItem(c *gin.Context) {
	item, err := ic.Items.Get(c.Request.Context(), c.Param("item_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item details", item)
}

// EditItem -> rewrites description, quantity and note; the item must be
// launched again afterwards
func (ic *ItemController) EditItem(c *gin.Context) {
	var req services.EditItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := ic.Items.Edit(c.Request.Context(), c.Param("item_id"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}

func (ic *ItemController) ToggleDelivered(c *gin.Context) {
	ic.toggle(c, ic.Items.ToggleDelivered)
}

func (ic *ItemController) ToggleLaunched(c *gin.Context) {
	ic.toggle(c, ic.Items.ToggleLaunched)
}

func (ic *ItemController) ToggleCancelled(c *gin.Context) {
	ic.toggle(c, ic.Items.ToggleCancelled)
}

type toggleFunc func(ctx context.Context, id string) (*models.OrderItem, error)

func (ic *ItemController) toggle(c *gin.Context, fn toggleFunc) {
	item, err := fn(c.Request.Context(), c.Param("item_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item updated", item)
}
