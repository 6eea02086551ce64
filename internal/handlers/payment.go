// internal/handlers/payment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// gateway errors are not service sentinels; report them as payment failures
func (h *PaymentHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrRemoteFailure) || isServiceError(err) {
		respondError(c, err)
		return
	}
	logrus.WithError(err).Error("Payment gateway call failed")
	utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyPaymentFailed), nil)
}

func isServiceError(err error) bool {
	return errors.Is(err, services.ErrNotAuthenticated) ||
		errors.Is(err, services.ErrOrderNotFound) ||
		errors.Is(err, services.ErrPaymentNotApplicable) ||
		errors.Is(err, services.ErrForbidden)
}

// POST /payments/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req services.CreatePaymentIntentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	response, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), middleware.CurrentBuyer(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.paymentService.ConfirmPayment(c.Request.Context(), middleware.CurrentBuyer(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order_id":       order.ID,
		"payment_status": order.PaymentStatus,
	})
}

// POST /admin/orders/:id/refund
func (h *PaymentHandler) RefundOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.paymentService.RefundOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
