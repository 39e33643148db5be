package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/domain/models"
	"github.com/mamadbah2/posgate/internal/service/cart"
	"github.com/mamadbah2/posgate/internal/service/checkout"
)

// CartHandler exposes the sales-entry cart flow per terminal.
type CartHandler struct {
	carts       *cart.Service
	checkoutSvc *checkout.Service
	logger      *zap.Logger
}

// NewCartHandler constructs the HTTP handler adapter.
func NewCartHandler(carts *cart.Service, checkoutSvc *checkout.Service, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{carts: carts, checkoutSvc: checkoutSvc, logger: logger}
}

type cartView struct {
	Terminal string            `json:"terminal"`
	Lines    []models.CartLine `json:"lines"`
	Total    string            `json:"total"`
	Active   *models.Product   `json:"activeProduct,omitempty"`
}

func (h *CartHandler) view(terminal string) cartView {
	return cartView{
		Terminal: terminal,
		Lines:    h.carts.Lines(terminal),
		Total:    h.carts.Total(terminal).StringFixed(2),
		Active:   h.carts.ActiveProduct(terminal),
	}
}

// Get returns the terminal's current cart.
func (h *CartHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.view(c.Param("terminal")))
}

type lookupRequest struct {
	Code string `json:"code" binding:"required"`
}

// Lookup registers the current code-field contents and waits for the
// debounced lookup outcome. Short codes and inputs superseded by a newer
// keystroke resolve with no content.
func (h *CartHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}

	terminal := c.Param("terminal")

	select {
	case result, ok := <-h.carts.Lookup(terminal, req.Code):
		switch {
		case !ok || result.Superseded:
			c.Status(http.StatusNoContent)
		case result.NotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case result.Err != nil:
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to look up product"})
		default:
			c.JSON(http.StatusOK, result.Product)
		}
	case <-c.Request.Context().Done():
		c.Status(http.StatusNoContent)
	}
}

type addLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// AddLine appends the active product with the requested quantity.
func (h *CartHandler) AddLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
		return
	}

	terminal := c.Param("terminal")
	switch err := h.carts.AddActive(terminal, req.Quantity); {
	case errors.Is(err, cart.ErrNoActiveProduct):
		c.JSON(http.StatusConflict, gin.H{"error": "no product selected, look one up first"})
	case errors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, h.view(terminal))
	}
}

type changeQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// ChangeQuantity applies a delta to one line's quantity, clamped to the
// product's stock.
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return
	}

	var req changeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delta is required"})
		return
	}

	terminal := c.Param("terminal")
	if err := h.carts.ChangeQuantity(terminal, index, req.Delta); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart line not found"})
		return
	}

	c.JSON(http.StatusOK, h.view(terminal))
}

// RemoveLine drops one line from the cart.
func (h *CartHandler) RemoveLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line index"})
		return
	}

	terminal := c.Param("terminal")
	if err := h.carts.RemoveLine(terminal, index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart line not found"})
		return
	}

	c.JSON(http.StatusOK, h.view(terminal))
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout submits the cart as one sale record per line. The batch is
// all-or-nothing: any failure keeps the cart so the cashier can retry, and a
// retry may double-record lines that already went through.
func (h *CartHandler) Checkout(c *gin.Context) {
	// Payment method is optional and an empty body is fine.
	var req checkoutRequest
	_ = c.ShouldBindJSON(&req)

	seller := ""
	if session, ok := SessionFrom(c); ok {
		seller = session.Name
	}

	terminal := c.Param("terminal")
	result, err := h.checkoutSvc.Submit(c.Request.Context(), terminal, seller, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		}
		h.logger.Error("checkout failed", zap.String("terminal", terminal), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":               "sale batch failed, cart kept for retry",
			"retry_may_duplicate": true,
		})
		return
	}

	c.JSON(http.StatusCreated, result)
}
