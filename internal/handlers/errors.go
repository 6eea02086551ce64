// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

// respondError maps service errors onto the API envelope. Store failures
// are logged and reported without their cause.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		utils.ErrorResponse(c, http.StatusConflict, "INSUFFICIENT_STOCK", i18n.T(lang, i18n.KeyCheckoutOutOfStock), stockErr.Lines)
	case errors.Is(err, services.ErrNotAuthenticated):
		utils.UnauthorizedResponse(c, "")
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrInvalidQuantity):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartInvalidQty), nil)
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrCartLineNotFound):
		utils.NotFoundResponse(c, "cart")
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "order")
	case errors.Is(err, services.ErrAddressNotFound):
		utils.NotFoundResponse(c, "address")
	case errors.Is(err, services.ErrDealerNotFound):
		utils.NotFoundResponse(c, "dealer")
	case errors.Is(err, services.ErrProfileNotFound):
		utils.NotFoundResponse(c, "profile")
	case errors.Is(err, services.ErrEmptyCart):
		utils.ErrorResponse(c, http.StatusConflict, "EMPTY_CART", i18n.T(lang, i18n.KeyCartEmpty), gin.H{"redirect": "/products"})
	case errors.Is(err, services.ErrAddressRequired):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCheckoutAddressRequired), nil)
	case errors.Is(err, services.ErrInvalidShippingOption):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCheckoutInvalidShipping), nil)
	case errors.Is(err, services.ErrInvalidPaymentMethod):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCheckoutInvalidPayment), nil)
	case errors.Is(err, services.ErrInvalidCheckoutState):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCheckoutInvalidState))
	case errors.Is(err, services.ErrInvalidStatusTransition):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderInvalidTransition))
	case errors.Is(err, services.ErrInvalidTier):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyDealerInvalidTier), nil)
	case errors.Is(err, services.ErrInvalidRole):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProfileInvalidRole), nil)
	case errors.Is(err, services.ErrInvalidPrice):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductInvalidPrice), nil)
	case errors.Is(err, services.ErrPaymentNotApplicable):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyPaymentNotApplicable))
	case errors.Is(err, services.ErrOrphanedOrder):
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Checkout rolled back")
		utils.ErrorResponse(c, http.StatusBadGateway, "ORDER_FAILED", i18n.T(lang, i18n.KeyCheckoutFailed), nil)
	case errors.Is(err, services.ErrRemoteFailure):
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		utils.ErrorResponse(c, http.StatusBadGateway, "REMOTE_FAILURE", i18n.T(lang, i18n.KeyInternalError), nil)
	default:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Unhandled error")
		utils.InternalErrorResponse(c, "")
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
