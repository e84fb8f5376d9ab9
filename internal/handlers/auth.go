package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/middleware"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/services"
	"github.com/foodlinkhq/foodlink/pkg/errors"
	"github.com/foodlinkhq/foodlink/pkg/response"
)

// AuthHandler manages authentication flows (signup/login/refresh/logout/me).
type AuthHandler struct {
	profiles *services.ProfileService
}

func NewAuthHandler(profiles *services.ProfileService) *AuthHandler {
	return &AuthHandler{profiles: profiles}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	MobileNo string `json:"mobile_no" validate:"omitempty,max=32"`
	Location string `json:"location" validate:"omitempty,max=500"`
	Role     string `json:"role" validate:"required,oneof=donor ngo"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required,notblank"`
}

func sessionMetadata(c *gin.Context) iauth.SessionMetadata {
	return iauth.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.profiles.Signup(requestContext(c), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		MobileNo: req.MobileNo,
		Location: req.Location,
		Role:     models.Role(req.Role),
	}, sessionMetadata(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.profiles.Login(requestContext(c), req.Email, req.Password, sessionMetadata(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindAndValidate(c, &req) {
		return
	}

	tokens, err := h.profiles.Refresh(requestContext(c), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tokens)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sid := c.GetString(middleware.CtxSessionIDKey)
	if sid == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.profiles.Logout(requestContext(c), sid); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"revoked": true})
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.profiles.GetProfile(requestContext(c), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
