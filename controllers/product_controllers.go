package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/garcom-app/cart"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
	"github.com/yeremiapane/garcom-app/variant"
)

const maxImportSize = 10 << 20

type ProductController struct {
	Catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

type ProductOptions struct {
	Product models.Product  `json:"product"`
	Choices variant.Choices `json:"choices"`
	Tags    []string        `json:"tags"`
}

func productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || id == 0 {
		respondServiceError(c, models.Invalid("product_id", "invalid product id"))
		return 0, false
	}
	return uint(id), true
}

// GetProducts -> whole catalog, ?q= to search by name, ?recent=N for the
// most recently ordered
func (pc *ProductController) GetProducts(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		products []models.Product
		err      error
	)
	if raw := c.Query("recent"); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil {
			respondServiceError(c, models.Invalid("recent", "must be a number"))
			return
		}
		products, err = pc.Catalog.Recent(ctx, limit)
	} else {
		products, err = pc.Catalog.Search(ctx, c.Query("q"))
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	utils.RespondJSON(c, http.StatusOK, "List of products", products)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := pc.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product details", product)
}

// GetProductOptions -> what the selection sheet offers for a product
func (pc *ProductController) GetProductOptions(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	product, err := pc.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product options", ProductOptions{
		Product: *product,
		Choices: variant.Options(product),
		Tags:    cart.SuggestedTags(product),
	})
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := pc.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Product created successfully", product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := pc.Catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product updated successfully", product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := pc.Catalog.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Product deleted successfully", nil)
}

// ExportCatalog -> downloadable JSON backup of the catalog
func (pc *ProductController) ExportCatalog(c *gin.Context) {
	var buf bytes.Buffer
	if err := pc.Catalog.Export(c.Request.Context(), &buf); err != nil {
		respondServiceError(c, err)
		return
	}
	name := fmt.Sprintf("garcom-catalog-%s.json", time.Now().Format(dateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

// ImportCatalog -> accepts the file as multipart field "file" or as the raw
// request body
func (pc *ProductController) ImportCatalog(c *gin.Context) {
	var body io.Reader = io.LimitReader(c.Request.Body, maxImportSize)
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		defer f.Close()
		body = io.LimitReader(f, maxImportSize)
	}

	result, err := pc.Catalog.Import(c.Request.Context(), body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catalog imported", result)
}
