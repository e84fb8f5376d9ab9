package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/pkg/errors"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// nearMe asks for donations in the caller's own profile location.
const nearMe = "me"

// DonationHandler exposes listings and the claim workflow attached to them.
type DonationHandler struct {
	donations *services.DonationService
	profiles  *services.ProfileService
}

func NewDonationHandler(donations *services.DonationService, profiles *services.ProfileService) *DonationHandler {
	return &DonationHandler{donations: donations, profiles: profiles}
}

// Required fields are checked by the service so the error lists every missing one.
type createDonationRequest struct {
	FoodType      string    `json:"food_type"`
	Quantity      string    `json:"quantity"`
	ExpiryDate    time.Time `json:"expiry_date"`
	PickupAddress string    `json:"pickup_address"`
	PickupTime    string    `json:"pickup_time"`
	ContactInfo   string    `json:"contact_info"`
	Description   string    `json:"description" validate:"omitempty,max=2000"`
	Photos        []string  `json:"photos" validate:"omitempty,max=10,dive,url"`
}

// GET /api/donations?near=me|<address>&limit=N
func (h *DonationHandler) List(c *gin.Context) {
	ctx := requestContext(c)
	near := strings.TrimSpace(c.Query("near"))
	if strings.EqualFold(near, nearMe) {
		user, err := h.profiles.GetProfile(ctx, c.GetString(middleware.CtxUserIDKey))
		if err != nil {
			response.Error(c, err)
			return
		}
		near = user.Location
	}

	limit := parseIntQuery(c, "limit", 0)
	donations, err := h.donations.ListAvailableDonations(ctx, services.ListAvailableOptions{Near: near, Limit: limit})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, donations, &response.Meta{Count: len(donations), Limit: limit})
}

// POST /api/donations
func (h *DonationHandler) Create(c *gin.Context) {
	var req createDonationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	donation, err := h.donations.PostDonation(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.PostDonationInput{
		FoodType:      req.FoodType,
		Quantity:      req.Quantity,
		ExpiryDate:    req.ExpiryDate,
		PickupAddress: req.PickupAddress,
		PickupTime:    req.PickupTime,
		ContactInfo:   req.ContactInfo,
		Description:   req.Description,
		Photos:        req.Photos,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, donation)
}

// GET /api/donations/mine
func (h *DonationHandler) Mine(c *gin.Context) {
	donations, err := h.donations.ListDonorDonations(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, donations, &response.Meta{Count: len(donations)})
}

// GET /api/donations/:id
func (h *DonationHandler) Get(c *gin.Context) {
	donation, err := h.donations.GetDonation(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, donation)
}

// GET /api/donations/:id/claims?status=claimed
func (h *DonationHandler) ListClaims(c *gin.Context) {
	var status models.ClaimStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, ok := models.ParseClaimStatus(strings.ToLower(raw))
		if !ok {
			response.Error(c, errors.NewBadRequest("status must be one of claimed, confirmed, collected, completed"))
			return
		}
		status = parsed
	}

	claims, err := h.donations.ListClaimsForDonation(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, claims, &response.Meta{Count: len(claims)})
}

// POST /api/donations/:id/claims
func (h *DonationHandler) RequestClaim(c *gin.Context) {
	claim, err := h.donations.RequestClaim(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, claim)
}

// POST /api/donations/:id/claims/:claimID/approve
func (h *DonationHandler) Approve(c *gin.Context) {
	claim, err := h.donations.ApproveClaim(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("claimID"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, claim)
}

// POST /api/donations/:id/complete
func (h *DonationHandler) Complete(c *gin.Context) {
	donation, err := h.donations.MarkCompleted(requestContext(c), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, donation)
}
