package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// ClaimHandler serves an NGO's own claims.
type ClaimHandler struct {
	donations *services.DonationService
}

func NewClaimHandler(donations *services.DonationService) *ClaimHandler {
	return &ClaimHandler{donations: donations}
}

// GET /api/claims/mine
func (h *ClaimHandler) Mine(c *gin.Context) {
	claims, err := h.donations.ListNGOClaims(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, claims, &response.Meta{Count: len(claims)})
}

// POST /api/claims/:id/collect
func (h *ClaimHandler) Collect(c *gin.Context) {
	claim, err := h.donations.MarkCollected(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, claim)
}
