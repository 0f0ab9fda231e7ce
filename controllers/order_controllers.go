package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/garcom-app/cart"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
	"github.com/yeremiapane/garcom-app/variant"
)

// OrderController drives the per-table cart and its commit.
type OrderController struct {
	Tables  *services.TableService
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Carts   *cart.Store
}

func NewOrderController(tables *services.TableService, catalog *services.CatalogService, orders *services.OrderService, carts *cart.Store) *OrderController {
	return &OrderController{Tables: tables, Catalog: catalog, Orders: orders, Carts: carts}
}

type CartView struct {
	TableID    string       `json:"table_id"`
	Lines      []cart.Line  `json:"lines"`
	TotalItems int          `json:"total_items"`
	Badges     map[uint]int `json:"badges"`
}

type addCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Delta     int    `json:"delta"`
	Key       string `json:"key"`
	Suffix    string `json:"suffix"`
	variant.Selection
}

func (oc *OrderController) view(ctx context.Context, tableID string, c *cart.Cart) (CartView, error) {
	v := CartView{TableID: tableID, Lines: []cart.Line{}, Badges: map[uint]int{}}
	if c == nil {
		return v, nil
	}
	snap, err := oc.Catalog.Snapshot(ctx)
	if err != nil {
		return v, err
	}
	v.Lines = c.Lines(snap)
	v.TotalItems = c.TotalItemCount()
	for _, l := range v.Lines {
		if _, seen := v.Badges[l.Product.ID]; !seen {
			v.Badges[l.Product.ID] = c.ProductQuantity(l.Product.ID)
		}
	}
	return v, nil
}

// openTable loads the table and refuses closed ones, which take no orders.
func (oc *OrderController) openTable(c *gin.Context) (*models.Table, bool) {
	table, err := oc.Tables.Get(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	if table.IsClosed() {
		respondServiceError(c, services.ErrInvalidTransition)
		return nil, false
	}
	return table, true
}

func (oc *OrderController) respondCart(c *gin.Context, message, tableID string) {
	cc, _ := oc.Carts.Peek(tableID)
	v, err := oc.view(c.Request.Context(), tableID, cc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, v)
}

func (oc *OrderController) GetCart(c *gin.Context) {
	table, err := oc.Tables.Get(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	oc.respondCart(c, "Cart", table.ID)
}

// AddCartItem -> adds delta (default 1, negative to remove) to one variant.
// The variant comes as an encoded key, as the key suffix after the product
// id, or as a selection.
func (oc *OrderController) AddCartItem(c *gin.Context) {
	table, ok := oc.openTable(c)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Delta == 0 {
		req.Delta = 1
	}

	product, err := oc.Catalog.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var key variant.Key
	switch {
	case req.Key != "":
		key, err = variant.Decode(req.Key, variant.KindFor(product.EffectiveOptionType()))
		if err != nil {
			respondServiceError(c, models.Invalid("key", "%v", err))
			return
		}
		err = variant.Validate(key, product)
	case req.Suffix != "":
		key, err = variant.FromSuffix(product, req.Suffix)
	default:
		key, err = variant.FromSelection(product, req.Selection)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var qty int
	oc.Carts.Update(table.ID, func(cc *cart.Cart) {
		qty = cc.Increment(key, req.Delta)
	})
	utils.InfoLogger.WithField("table_id", table.ID).Debugf("Cart %s -> %d", key, qty)
	oc.respondCart(c, "Cart updated", table.ID)
}

func (oc *OrderController) RemoveCartProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil {
		respondServiceError(c, models.Invalid("product_id", "invalid product id"))
		return
	}
	tableID := c.Param("table_id")
	if cc, ok := oc.Carts.Peek(tableID); ok {
		cc.RemoveProduct(uint(productID))
	}
	oc.respondCart(c, "Product removed from cart", tableID)
}

// SetCartNote -> replaces the product note, or appends a suggestion tag
func (oc *OrderController) SetCartNote(c *gin.Context) {
	table, ok := oc.openTable(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil {
		respondServiceError(c, models.Invalid("product_id", "invalid product id"))
		return
	}

	var body struct {
		Note *string `json:"note"`
		Tag  string  `json:"tag"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Note == nil && body.Tag == "" {
		respondServiceError(c, models.Invalid("note", "note or tag is required"))
		return
	}

	oc.Carts.Update(table.ID, func(cc *cart.Cart) {
		if body.Tag != "" {
			cc.AppendTag(uint(productID), body.Tag)
		} else {
			cc.SetNote(uint(productID), *body.Note)
		}
	})
	oc.respondCart(c, "Note updated", table.ID)
}

// ClearCart -> abandons the cart without ordering
func (oc *OrderController) ClearCart(c *gin.Context) {
	tableID := c.Param("table_id")
	oc.Carts.Discard(tableID)
	oc.respondCart(c, "Cart cleared", tableID)
}

// CommitCart -> sends the cart to the kitchen. Only the committed lines leave
// the cart, so an add racing the commit is kept. On failure the cart is kept
// so the waiter can retry.
func (oc *OrderController) CommitCart(c *gin.Context) {
	tableID := c.Param("table_id")
	ctx := c.Request.Context()

	var lines []cart.Line
	if cc, ok := oc.Carts.Peek(tableID); ok {
		snap, err := oc.Catalog.Snapshot(ctx)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		lines = cc.Lines(snap)
	}

	items, err := oc.Orders.Commit(ctx, tableID, lines)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	oc.Carts.Settle(tableID, lines)
	utils.RespondJSON(c, http.StatusCreated, "Order committed", items)
}
