// Package repository is the single storage adapter shared by every service. It wraps
// gorm behind a narrow interface and classifies storage failures so callers can tell
// a missing record from an unreachable database.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/foodlinkhq/foodlink/internal/models"
)

// DonationFilter narrows ListDonations. Zero values mean "any".
type DonationFilter struct {
	Status  models.DonationStatus
	DonorID string
	Limit   int
}

// ClaimFilter narrows ListClaims. Zero values mean "any".
type ClaimFilter struct {
	DonationID string
	NGOID      string
	Status     models.ClaimStatus
	Limit      int
}

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role  models.Role
	IDs   []string
	Limit int
}

// Repository exposes create/get/list/update over users, NGO profiles, donations,
// claims and stored files. List results are ordered newest first.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fields map[string]any) error
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	CountUsers(ctx context.Context, role models.Role) (int64, error)

	GetNGOProfile(ctx context.Context, userID string) (*models.NGOProfile, error)
	CreateNGOProfile(ctx context.Context, profile *models.NGOProfile) error
	UpdateNGOProfile(ctx context.Context, profile *models.NGOProfile) error
	SetNGOVerified(ctx context.Context, userID string, verified bool) error

	CreateDonation(ctx context.Context, donation *models.Donation) error
	GetDonation(ctx context.Context, id string) (*models.Donation, error)
	ListDonations(ctx context.Context, filter DonationFilter) ([]models.Donation, error)
	CountDonations(ctx context.Context, filter DonationFilter) (int64, error)
	// TransitionDonation moves a donation from one status to another only if it is still
	// in the expected status. lockedBy, when set, records the claim holding the donation.
	TransitionDonation(ctx context.Context, id string, from, to models.DonationStatus, lockedBy *string) (bool, error)

	CreateClaim(ctx context.Context, claim *models.Claim) error
	GetClaim(ctx context.Context, id string) (*models.Claim, error)
	ListClaims(ctx context.Context, filter ClaimFilter) ([]models.Claim, error)
	CountClaims(ctx context.Context, filter ClaimFilter) (int64, error)
	TransitionClaim(ctx context.Context, id string, from, to models.ClaimStatus) (bool, error)

	CreateFile(ctx context.Context, file *models.StoredFile) error
	GetFile(ctx context.Context, bucket, id string) (*models.StoredFile, error)

	// Transaction runs fn against a repository bound to a single database transaction.
	Transaction(ctx context.Context, fn func(Repository) error) error
}

// GormRepository implements Repository on top of gorm.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// New constructs a GormRepository.
func New(db *gorm.DB) (*GormRepository, error) {
	if db == nil {
		return nil, errors.New("repository: db is required")
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) conn(ctx context.Context) *gorm.DB {
	if ctx == nil {
		ctx = context.Background()
	}
	return r.db.WithContext(ctx)
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	var fnErr error
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&GormRepository{db: tx})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return wrap("commit transaction", err)
	}
	return err
}

func (r *GormRepository) CreateUser(ctx context.Context, user *models.User) error {
	return wrap("create user", r.conn(ctx).Create(user).Error)
}

func (r *GormRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap("get user", err)
	}
	return &user, nil
}

func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.conn(ctx).First(&user, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, wrap("get user by email", err)
	}
	return &user, nil
}

func (r *GormRepository) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.conn(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
	return wrap("update user", err)
}

func (r *GormRepository) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := r.conn(ctx).Model(&models.User{}).Order("created_at DESC")
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

func (r *GormRepository) CountUsers(ctx context.Context, role models.Role) (int64, error) {
	query := r.conn(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, wrap("count users", err)
	}
	return total, nil
}

func (r *GormRepository) GetNGOProfile(ctx context.Context, userID string) (*models.NGOProfile, error) {
	var profile models.NGOProfile
	if err := r.conn(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, wrap("get ngo profile", err)
	}
	return &profile, nil
}

func (r *GormRepository) CreateNGOProfile(ctx context.Context, profile *models.NGOProfile) error {
	return wrap("create ngo profile", r.conn(ctx).Create(profile).Error)
}

// UpdateNGOProfile writes the editable organisation fields. Verification is left untouched.
func (r *GormRepository) UpdateNGOProfile(ctx context.Context, profile *models.NGOProfile) error {
	err := r.conn(ctx).
		Model(&models.NGOProfile{}).
		Where("user_id = ?", profile.UserID).
		Updates(map[string]any{
			"ngo_name":    profile.NGOName,
			"ngo_address": profile.NGOAddress,
			"ngo_docs":    profile.NGODocs,
		}).Error
	return wrap("update ngo profile", err)
}

func (r *GormRepository) SetNGOVerified(ctx context.Context, userID string, verified bool) error {
	result := r.conn(ctx).
		Model(&models.NGOProfile{}).
		Where("user_id = ?", userID).
		Update("is_verified", verified)
	if result.Error != nil {
		return wrap("verify ngo", result.Error)
	}
	if result.RowsAffected == 0 {
		return wrap("verify ngo", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GormRepository) CreateDonation(ctx context.Context, donation *models.Donation) error {
	return wrap("create donation", r.conn(ctx).Create(donation).Error)
}

func (r *GormRepository) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	var donation models.Donation
	if err := r.conn(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, wrap("get donation", err)
	}
	return &donation, nil
}

func (r *GormRepository) donationQuery(ctx context.Context, filter DonationFilter) *gorm.DB {
	query := r.conn(ctx).Model(&models.Donation{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DonorID != "" {
		query = query.Where("donor_id = ?", filter.DonorID)
	}
	return query
}

func (r *GormRepository) ListDonations(ctx context.Context, filter DonationFilter) ([]models.Donation, error) {
	query := r.donationQuery(ctx, filter).Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var donations []models.Donation
	if err := query.Find(&donations).Error; err != nil {
		return nil, wrap("list donations", err)
	}
	return donations, nil
}

func (r *GormRepository) CountDonations(ctx context.Context, filter DonationFilter) (int64, error) {
	var total int64
	if err := r.donationQuery(ctx, filter).Count(&total).Error; err != nil {
		return 0, wrap("count donations", err)
	}
	return total, nil
}

func (r *GormRepository) TransitionDonation(ctx context.Context, id string, from, to models.DonationStatus, lockedBy *string) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if lockedBy != nil {
		updates["claimed_by_claim_id"] = *lockedBy
	}

	result := r.conn(ctx).
		Model(&models.Donation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, wrap("transition donation", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormRepository) CreateClaim(ctx context.Context, claim *models.Claim) error {
	return wrap("create claim", r.conn(ctx).Create(claim).Error)
}

func (r *GormRepository) GetClaim(ctx context.Context, id string) (*models.Claim, error) {
	var claim models.Claim
	if err := r.conn(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, wrap("get claim", err)
	}
	return &claim, nil
}

func (r *GormRepository) claimQuery(ctx context.Context, filter ClaimFilter) *gorm.DB {
	query := r.conn(ctx).Model(&models.Claim{})
	if filter.DonationID != "" {
		query = query.Where("donation_id = ?", filter.DonationID)
	}
	if filter.NGOID != "" {
		query = query.Where("ngo_id = ?", filter.NGOID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return query
}

func (r *GormRepository) ListClaims(ctx context.Context, filter ClaimFilter) ([]models.Claim, error) {
	query := r.claimQuery(ctx, filter).Order("claimed_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var claims []models.Claim
	if err := query.Find(&claims).Error; err != nil {
		return nil, wrap("list claims", err)
	}
	return claims, nil
}

func (r *GormRepository) CountClaims(ctx context.Context, filter ClaimFilter) (int64, error) {
	var total int64
	if err := r.claimQuery(ctx, filter).Count(&total).Error; err != nil {
		return 0, wrap("count claims", err)
	}
	return total, nil
}

func (r *GormRepository) TransitionClaim(ctx context.Context, id string, from, to models.ClaimStatus) (bool, error) {
	result := r.conn(ctx).
		Model(&models.Claim{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, wrap("transition claim", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormRepository) CreateFile(ctx context.Context, file *models.StoredFile) error {
	return wrap("create file", r.conn(ctx).Create(file).Error)
}

func (r *GormRepository) GetFile(ctx context.Context, bucket, id string) (*models.StoredFile, error) {
	var file models.StoredFile
	if err := r.conn(ctx).First(&file, "id = ? AND bucket = ?", id, bucket).Error; err != nil {
		return nil, wrap("get file", err)
	}
	return &file, nil
}
