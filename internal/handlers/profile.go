package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// ProfileHandler exposes the caller's own profile and NGO organisation details.
type ProfileHandler struct {
	profiles *services.ProfileService
}

func NewProfileHandler(profiles *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Role is not accepted here; it is fixed at signup.
type updateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=120"`
	MobileNo *string `json:"mobile_no" validate:"omitempty,max=32"`
	Location *string `json:"location" validate:"omitempty,max=500"`
}

type ngoProfileRequest struct {
	NGOName    string `json:"ngo_name" validate:"required,notblank,max=200"`
	NGOAddress string `json:"ngo_address" validate:"required,notblank"`
	NGODocs    string `json:"ngo_docs" validate:"omitempty,max=2048"`
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.profiles.GetProfile(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// PATCH /api/profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.profiles.UpdateProfile(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.UpdateProfileInput{
		Name:     req.Name,
		MobileNo: req.MobileNo,
		Location: req.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/profile/ngo
//
// Responds with null data when the NGO has not filled in its organisation details yet.
func (h *ProfileHandler) GetNGO(c *gin.Context) {
	profile, err := h.profiles.GetNGOProfile(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// PUT /api/profile/ngo
func (h *ProfileHandler) SaveNGO(c *gin.Context) {
	var req ngoProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}

	profile, err := h.profiles.SaveNGOProfile(requestContext(c), c.GetString(middleware.CtxUserIDKey), services.NGOProfileInput{
		NGOName:    req.NGOName,
		NGOAddress: req.NGOAddress,
		NGODocs:    req.NGODocs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}
