// internal/handlers/address.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ultrulas16/sinekapar/internal/middleware"
	"github.com/ultrulas16/sinekapar/internal/services"
	"github.com/ultrulas16/sinekapar/internal/utils"
)

type AddressHandler struct {
	addressService *services.AddressService
}

func NewAddressHandler(addressService *services.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

// GET /addresses
func (h *AddressHandler) GetAddresses(c *gin.Context) {
	addresses, err := h.addressService.ListAddresses(c.Request.Context(), middleware.CurrentBuyer(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"addresses": addresses})
}

// POST /addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	var req services.CreateAddressRequest
	if !bindAndValidate(c, &req) {
		return
	}

	address, err := h.addressService.CreateAddress(c.Request.Context(), middleware.CurrentBuyer(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, address)
}
