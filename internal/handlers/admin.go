// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type AdminHandler struct {
	adminService    *services.AdminService
	identityService *services.IdentityService
	orderService    *services.OrderService
}

type UpdateDealerTierRequest struct {
	Tier int `json:"tier" validate:"required,min=1,max=3"`
}

func NewAdminHandler(adminService *services.AdminService, identityService *services.IdentityService, orderService *services.OrderService) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		identityService: identityService,
		orderService:    orderService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// PUT /admin/profiles/:id/role
func (h *AdminHandler) UpdateProfileRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateProfileRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	profile, err := h.adminService.UpdateProfileRole(c.Request.Context(), id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// PUT /admin/dealers/:id/tier
func (h *AdminHandler) UpdateDealerTier(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDealerTierRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dealer, err := h.identityService.UpdateDealerTier(c.Request.Context(), id, req.Tier)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, dealer)
}

// GET /admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), middleware.CurrentBuyer(c), true, params)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// PUT /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}
