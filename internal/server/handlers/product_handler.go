package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/pkg/clients/backend"
)

// ProductHandler proxies catalog administration to the remote store.
type ProductHandler struct {
	client backend.Client
	logger *zap.Logger
}

// NewProductHandler constructs the HTTP handler adapter.
func NewProductHandler(client backend.Client, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{client: client, logger: logger}
}

// List returns the full catalog.
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.client.ListProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("listing products failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to list products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// Search looks a product up by EAN code.
func (h *ProductHandler) Search(c *gin.Context) {
	ean := c.Query("ean")
	if ean == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean query parameter is required"})
		return
	}

	product, err := h.client.SearchProduct(c.Request.Context(), ean)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("product search failed", zap.String("ean", ean), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to search product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

type productForm struct {
	EAN         string `json:"ean" binding:"required,min=8"`
	Description string `json:"description" binding:"required"`
	Price       string `json:"price" binding:"required"`
	Stock       int    `json:"stock" binding:"min=0"`
}

// Create registers a product, accepting JSON or multipart with an image file.
func (h *ProductHandler) Create(c *gin.Context) {
	req, ok := h.bindProduct(c)
	if !ok {
		return
	}

	product, err := h.client.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("product creation failed", zap.String("ean", req.EAN), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Update replaces the product identified by the path id.
func (h *ProductHandler) Update(c *gin.Context) {
	req, ok := h.bindProduct(c)
	if !ok {
		return
	}

	product, err := h.client.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("product update failed", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// Delete removes the product identified by the path id.
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.client.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("product deletion failed", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to delete product"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) bindProduct(c *gin.Context) (backend.CreateProductRequest, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.bindMultipart(c)
	}

	var form productForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean, description, price and stock are required"})
		return backend.CreateProductRequest{}, false
	}

	return backend.CreateProductRequest{
		EAN:         form.EAN,
		Description: form.Description,
		Price:       form.Price,
		Stock:       form.Stock,
	}, true
}

func (h *ProductHandler) bindMultipart(c *gin.Context) (backend.CreateProductRequest, bool) {
	stock, err := strconv.Atoi(c.DefaultPostForm("stock", "0"))
	if err != nil || stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be a non-negative integer"})
		return backend.CreateProductRequest{}, false
	}

	req := backend.CreateProductRequest{
		EAN:         c.PostForm("ean"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Stock:       stock,
	}
	if req.EAN == "" || req.Description == "" || req.Price == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean, description and price are required"})
		return backend.CreateProductRequest{}, false
	}

	file, header, err := c.Request.FormFile("image")
	if err == nil {
		req.Image = file
		req.ImageFilename = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return backend.CreateProductRequest{}, false
	}

	return req, true
}
