// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	summary, err := h.cartService.ComputeTotals(c.Request.Context(), middleware.CurrentBuyer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.AddToCartRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.cartService.AddOrIncrement(c.Request.Context(), middleware.CurrentBuyer(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"line":    line,
		"message": i18n.T(lang, i18n.KeyCartItemAdded),
	})
}

// PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}

	line, err := h.cartService.SetQuantity(c.Request.Context(), middleware.CurrentBuyer(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"line": line}
	if line.StockWarning {
		response["warning"] = i18n.T(lang, i18n.KeyCartStockWarning, line.Stock)
	}
	utils.SuccessResponse(c, response)
}

// DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cartService.RemoveLine(c.Request.Context(), middleware.CurrentBuyer(c), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCartItemRemoved),
	})
}
