package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/foodlinkhq/foodlink/internal/auth"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/pkg/crypto"
	apperrors "github.com/foodlinkhq/foodlink/pkg/errors"
	"github.com/foodlinkhq/foodlink/pkg/logger"
	"github.com/foodlinkhq/foodlink/pkg/metrics"
)

// SignupInput describes a new donor or NGO account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	MobileNo string
	Location string
	Role     models.Role
}

// UpdateProfileInput enumerates mutable profile attributes. Role is intentionally absent.
type UpdateProfileInput struct {
	Name     *string
	MobileNo *string
	Location *string
}

// NGOProfileInput carries editable organisation details.
type NGOProfileInput struct {
	NGOName    string
	NGOAddress string
	NGODocs    string
}

// AuthResult bundles the account with its freshly issued tokens.
type AuthResult struct {
	User   *models.User   `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// ProfileService owns accounts, sessions and NGO organisation records.
type ProfileService struct {
	repo     repository.Repository
	sessions *auth.SessionService
	log      *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo repository.Repository, sessions *auth.SessionService) (*ProfileService, error) {
	if repo == nil {
		return nil, errors.New("profile service: repository is required")
	}
	if sessions == nil {
		return nil, errors.New("profile service: session service is required")
	}
	return &ProfileService{
		repo:     repo,
		sessions: sessions,
		log:      logger.WithModule("profile"),
	}, nil
}

// CreateAccount registers a user with a hashed password.
func (s *ProfileService) CreateAccount(ctx context.Context, input SignupInput) (*models.User, error) {
	ctx = ensuredContext(ctx)

	role, ok := models.ParseRole(string(input.Role))
	if !ok {
		return nil, apperrors.NewBadRequest("Role must be donor or ngo")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || input.Password == "" {
		return nil, apperrors.NewBadRequest("Name, email and password are required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("profile service: hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		MobileNo: strings.TrimSpace(input.MobileNo),
		Location: strings.TrimSpace(input.Location),
		Role:     role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storageError(err, nil)
	}

	metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	s.log.Info("account created", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Signup creates the account and logs it in.
func (s *ProfileService) Signup(ctx context.Context, input SignupInput, meta auth.SessionMetadata) (*AuthResult, error) {
	user, err := s.CreateAccount(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, meta)
}

// Login verifies credentials and opens a session.
func (s *ProfileService) Login(ctx context.Context, email, password string, meta auth.SessionMetadata) (*AuthResult, error) {
	ctx = ensuredContext(ctx)

	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, storageError(err, nil)
	}
	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return s.issue(ctx, user, meta)
}

func (s *ProfileService) issue(ctx context.Context, user *models.User, meta auth.SessionMetadata) (*AuthResult, error) {
	tokens, _, err := s.sessions.CreateSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh rotates the refresh token.
func (s *ProfileService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	tokens, _, err := s.sessions.RefreshSession(ensuredContext(ctx), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionNotFound),
			errors.Is(err, auth.ErrSessionRevoked),
			errors.Is(err, auth.ErrSessionExpired),
			errors.Is(err, auth.ErrSessionInvalidToken):
			return auth.TokenPair{}, apperrors.ErrUnauthorized.WithInternal(err)
		}
		return auth.TokenPair{}, err
	}
	return tokens, nil
}

// Logout revokes the session behind the current access token.
func (s *ProfileService) Logout(ctx context.Context, sessionID string) error {
	err := s.sessions.RevokeSession(ensuredContext(ctx), sessionID)
	if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrSessionInvalidToken) {
		return nil
	}
	return err
}

// GetProfile returns the user's profile.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUser(ensuredContext(ctx), userID)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}
	return user, nil
}

// UpdateProfile applies the supplied changes to name, mobile number and location.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("Name cannot be empty")
		}
		fields["name"] = name
	}
	if input.MobileNo != nil {
		fields["mobile_no"] = strings.TrimSpace(*input.MobileNo)
	}
	if input.Location != nil {
		fields["location"] = strings.TrimSpace(*input.Location)
	}

	if err := s.repo.UpdateUser(ctx, userID, fields); err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}
	return s.GetProfile(ctx, userID)
}

// GetNGOProfile returns the organisation record, or nil when none has been saved yet.
func (s *ProfileService) GetNGOProfile(ctx context.Context, userID string) (*models.NGOProfile, error) {
	profile, err := s.repo.GetNGOProfile(ensuredContext(ctx), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err, nil)
	}
	return profile, nil
}

// SaveNGOProfile creates the organisation record on first save and updates it afterwards.
// New records always start unverified.
func (s *ProfileService) SaveNGOProfile(ctx context.Context, userID string, input NGOProfileInput) (*models.NGOProfile, error) {
	ctx = ensuredContext(ctx)

	if _, err := requireRole(ctx, s.repo, userID, models.RoleNGO); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.NGOName)
	if name == "" {
		return nil, apperrors.NewBadRequest("NGO name is required")
	}

	profile := &models.NGOProfile{
		UserID:     userID,
		NGOName:    name,
		NGOAddress: strings.TrimSpace(input.NGOAddress),
		NGODocs:    strings.TrimSpace(input.NGODocs),
	}

	existing, err := s.GetNGOProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		profile.IsVerified = false
		if err := s.repo.CreateNGOProfile(ctx, profile); err != nil {
			return nil, storageError(err, nil)
		}
		s.log.Info("ngo profile created", zap.String("user_id", userID))
		return profile, nil
	}

	if err := s.repo.UpdateNGOProfile(ctx, profile); err != nil {
		return nil, storageError(err, nil)
	}
	return s.GetNGOProfile(ctx, userID)
}

// VerifyNGO flips the verification flag. It is reachable from operator tooling only.
func (s *ProfileService) VerifyNGO(ctx context.Context, userID string, verified bool) error {
	if err := s.repo.SetNGOVerified(ensuredContext(ctx), userID, verified); err != nil {
		return storageError(err, apperrors.ErrNotFound.WithMessage("NGO profile not found"))
	}
	s.log.Info("ngo verification changed", zap.String("user_id", userID), zap.Bool("verified", verified))
	return nil
}
