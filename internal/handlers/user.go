// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ultrulas16/sinekapar/internal/i18n"
	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /me
func (h *UserHandler) GetMe(c *gin.Context) {
	me, err := h.userService.GetMe(c.Request.Context(), middleware.CurrentBuyer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, me)
}

// PUT /me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), middleware.CurrentBuyer(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"profile": profile,
		"message": i18n.T(lang, i18n.KeyProfileUpdated),
	})
}
