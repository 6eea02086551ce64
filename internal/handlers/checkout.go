// internal/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

// CheckoutHandler runs a whole checkout session inside one request: the
// client resends its selections and the session is rebuilt from the cart.
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (h *CheckoutHandler) openSession(c *gin.Context, req *services.CheckoutRequest) (*services.CheckoutSession, bool) {
	session, err := h.checkoutService.Begin(c.Request.Context(), middleware.CurrentBuyer(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if err := session.Apply(req); err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}

// GET /checkout
func (h *CheckoutHandler) Preview(c *gin.Context) {
	session, ok := h.openSession(c, nil)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"session": session,
		"totals":  session.ComputeOrderTotals(),
	})
}

// POST /checkout/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	var req services.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, ok := h.openSession(c, &req)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"session": session,
		"totals":  session.ComputeOrderTotals(),
	})
}

// POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, ok := h.openSession(c, &req)
	if !ok {
		return
	}

	order, err := session.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"order":   order,
		"state":   session.State,
		"message": i18n.T(lang, i18n.KeyCheckoutOrderPlaced),
	})
}
