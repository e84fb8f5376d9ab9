package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodlinkhq/foodlink/internal/location"
	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
	"github.com/foodlinkhq/foodlink/pkg/logger"
	"github.com/foodlinkhq/foodlink/pkg/metrics"
)

// DefaultQueryPageLimit caps how many records a single list call pulls from storage.
const DefaultQueryPageLimit = 1000

// DonationConfig tunes the DonationService.
type DonationConfig struct {
	QueryPageLimit int
	Classifier     location.Classifier
	Clock          func() time.Time
}

// PostDonationInput describes a new listing. Description and Photos are optional.
type PostDonationInput struct {
	FoodType      string
	Quantity      string
	ExpiryDate    time.Time
	PickupAddress string
	PickupTime    string
	ContactInfo   string
	Description   string
	Photos        []string
}

// ListAvailableOptions narrows ListAvailableDonations.
type ListAvailableOptions struct {
	// Near restricts results to donations whose pickup address resolves to the same city.
	Near  string
	Limit int
}

// DonationService drives donations and claims through their lifecycle:
//
//	donation: available -> claimed -> collected -> completed
//	claim:    claimed -> confirmed -> collected -> completed
//
// A donation leaves available only through ApproveClaim, which locks it to exactly one claim.
type DonationService struct {
	repo       repository.Repository
	classifier location.Classifier
	pageLimit  int
	now        func() time.Time
	log        *zap.Logger
}

// NewDonationService constructs a DonationService.
func NewDonationService(repo repository.Repository, cfg DonationConfig) (*DonationService, error) {
	if repo == nil {
		return nil, errors.New("donation service: repository is required")
	}

	limit := cfg.QueryPageLimit
	if limit <= 0 {
		limit = DefaultQueryPageLimit
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = location.CuratedClassifier{}
	}
	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &DonationService{
		repo:       repo,
		classifier: classifier,
		pageLimit:  limit,
		now:        clock,
		log:        logger.WithModule("donations"),
	}, nil
}

// PostDonation publishes a listing as available. Expiry is not checked against the clock,
// so already-expired food can still be listed.
func (s *DonationService) PostDonation(ctx context.Context, donorID string, input PostDonationInput) (*models.Donation, error) {
	ctx = ensuredContext(ctx)

	if _, err := requireRole(ctx, s.repo, donorID, models.RoleDonor); err != nil {
		return nil, err
	}

	donation := &models.Donation{
		DonorID:       donorID,
		FoodType:      strings.TrimSpace(input.FoodType),
		Quantity:      strings.TrimSpace(input.Quantity),
		ExpiryDate:    input.ExpiryDate,
		PickupAddress: strings.TrimSpace(input.PickupAddress),
		PickupTime:    strings.TrimSpace(input.PickupTime),
		ContactInfo:   strings.TrimSpace(input.ContactInfo),
		Status:        models.DonationAvailable,
		Description:   strings.TrimSpace(input.Description),
		Photos:        normaliseIDs(input.Photos),
	}
	if missing := missingDonationFields(donation); len(missing) > 0 {
		return nil, ErrInvalidDonation.WithMessage("Missing required fields: " + strings.Join(missing, ", "))
	}

	if err := s.repo.CreateDonation(ctx, donation); err != nil {
		return nil, storageError(err, nil)
	}

	metrics.DonationTransitions.WithLabelValues(string(models.DonationAvailable)).Inc()
	s.log.Info("donation posted",
		zap.String("donation_id", donation.ID),
		zap.String("donor_id", donorID),
		zap.Bool("expired", donation.IsExpired(s.now())),
	)
	return donation, nil
}

func missingDonationFields(d *models.Donation) []string {
	var missing []string
	if d.FoodType == "" {
		missing = append(missing, "food_type")
	}
	if d.Quantity == "" {
		missing = append(missing, "quantity")
	}
	if d.ExpiryDate.IsZero() {
		missing = append(missing, "expiry_date")
	}
	if d.PickupAddress == "" {
		missing = append(missing, "pickup_address")
	}
	if d.PickupTime == "" {
		missing = append(missing, "pickup_time")
	}
	if d.ContactInfo == "" {
		missing = append(missing, "contact_info")
	}
	return missing
}

// RequestClaim records an NGO's intent to collect an available donation. The donation is
// left untouched, so several NGOs may hold open claims until the donor approves one.
func (s *DonationService) RequestClaim(ctx context.Context, donationID, ngoID string) (*models.Claim, error) {
	ctx = ensuredContext(ctx)

	if _, err := requireRole(ctx, s.repo, ngoID, models.RoleNGO); err != nil {
		return nil, err
	}

	donation, err := s.repo.GetDonation(ctx, donationID)
	if err != nil {
		return nil, storageError(err, ErrDonationNotFound)
	}
	if !donation.IsAvailable() {
		return nil, ErrDonationUnavailable
	}

	claim := &models.Claim{
		DonationID: donation.ID,
		NGOID:      ngoID,
		ClaimedAt:  s.now().UTC(),
		Status:     models.ClaimClaimed,
	}
	if err := s.repo.CreateClaim(ctx, claim); err != nil {
		return nil, storageError(err, nil)
	}

	metrics.ClaimTransitions.WithLabelValues(string(models.ClaimClaimed)).Inc()
	s.log.Info("claim requested", zap.String("claim_id", claim.ID), zap.String("donation_id", donation.ID), zap.String("ngo_id", ngoID))
	return claim, nil
}

// ApproveClaim confirms claimID and locks donationID to it in one transaction. The donation
// moves to claimed only if it is still available; approving the claim that already holds
// the donation succeeds without writing.
func (s *DonationService) ApproveClaim(ctx context.Context, donorID, claimID, donationID string) (*models.Claim, error) {
	ctx = ensuredContext(ctx)

	var approved *models.Claim
	replay := false
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		donation, err := tx.GetDonation(ctx, donationID)
		if err != nil {
			return storageError(err, ErrDonationNotFound)
		}
		if donation.DonorID != donorID {
			return ErrNotOwner
		}

		claim, err := tx.GetClaim(ctx, claimID)
		if err != nil {
			return storageError(err, ErrClaimNotFound)
		}
		if claim.DonationID != donation.ID {
			return ErrClaimMismatch
		}

		if donation.ClaimedByClaimID != nil && *donation.ClaimedByClaimID == claim.ID {
			approved = claim
			replay = true
			return nil
		}

		locked, err := tx.TransitionDonation(ctx, donation.ID, models.DonationAvailable, models.DonationClaimed, &claim.ID)
		if err != nil {
			return storageError(err, nil)
		}
		if !locked {
			metrics.ApprovalConflicts.Inc()
			return ErrDonationUnavailable
		}

		confirmed, err := tx.TransitionClaim(ctx, claim.ID, models.ClaimClaimed, models.ClaimConfirmed)
		if err != nil {
			return storageError(err, nil)
		}
		if !confirmed {
			return ErrInvalidTransition
		}

		claim.Status = models.ClaimConfirmed
		approved = claim
		return nil
	})
	if err != nil {
		return nil, storageError(err, nil)
	}

	if !replay {
		metrics.DonationTransitions.WithLabelValues(string(models.DonationClaimed)).Inc()
		metrics.ClaimTransitions.WithLabelValues(string(models.ClaimConfirmed)).Inc()
		s.log.Info("claim approved", zap.String("claim_id", claimID), zap.String("donation_id", donationID))
	}
	return approved, nil
}

// MarkCollected records pickup by the NGO holding the confirmed claim.
func (s *DonationService) MarkCollected(ctx context.Context, ngoID, claimID string) (*models.Claim, error) {
	ctx = ensuredContext(ctx)

	var collected *models.Claim
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		claim, err := tx.GetClaim(ctx, claimID)
		if err != nil {
			return storageError(err, ErrClaimNotFound)
		}
		if claim.NGOID != ngoID {
			return ErrNotOwner
		}

		ok, err := tx.TransitionClaim(ctx, claim.ID, models.ClaimConfirmed, models.ClaimCollected)
		if err != nil {
			return storageError(err, nil)
		}
		if !ok {
			return ErrInvalidTransition
		}
		ok, err = tx.TransitionDonation(ctx, claim.DonationID, models.DonationClaimed, models.DonationCollected, nil)
		if err != nil {
			return storageError(err, nil)
		}
		if !ok {
			return ErrInvalidTransition
		}

		claim.Status = models.ClaimCollected
		collected = claim
		return nil
	})
	if err != nil {
		return nil, storageError(err, nil)
	}

	metrics.ClaimTransitions.WithLabelValues(string(models.ClaimCollected)).Inc()
	metrics.DonationTransitions.WithLabelValues(string(models.DonationCollected)).Inc()
	return collected, nil
}

// MarkCompleted lets the donor confirm hand-over of a collected donation.
func (s *DonationService) MarkCompleted(ctx context.Context, donorID, donationID string) (*models.Donation, error) {
	ctx = ensuredContext(ctx)

	var completed *models.Donation
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		donation, err := tx.GetDonation(ctx, donationID)
		if err != nil {
			return storageError(err, ErrDonationNotFound)
		}
		if donation.DonorID != donorID {
			return ErrNotOwner
		}
		if donation.ClaimedByClaimID == nil {
			return ErrInvalidTransition
		}

		ok, err := tx.TransitionDonation(ctx, donation.ID, models.DonationCollected, models.DonationCompleted, nil)
		if err != nil {
			return storageError(err, nil)
		}
		if !ok {
			return ErrInvalidTransition
		}
		ok, err = tx.TransitionClaim(ctx, *donation.ClaimedByClaimID, models.ClaimCollected, models.ClaimCompleted)
		if err != nil {
			return storageError(err, nil)
		}
		if !ok {
			return ErrInvalidTransition
		}

		donation.Status = models.DonationCompleted
		completed = donation
		return nil
	})
	if err != nil {
		return nil, storageError(err, nil)
	}

	metrics.DonationTransitions.WithLabelValues(string(models.DonationCompleted)).Inc()
	metrics.ClaimTransitions.WithLabelValues(string(models.ClaimCompleted)).Inc()
	return completed, nil
}

// GetDonation returns a single donation.
func (s *DonationService) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	donation, err := s.repo.GetDonation(ensuredContext(ctx), id)
	if err != nil {
		return nil, storageError(err, ErrDonationNotFound)
	}
	return donation, nil
}

// ListAvailableDonations returns available donations, newest first.
func (s *DonationService) ListAvailableDonations(ctx context.Context, opts ListAvailableOptions) ([]models.Donation, error) {
	donations, err := s.repo.ListDonations(ensuredContext(ctx), repository.DonationFilter{
		Status: models.DonationAvailable,
		Limit:  s.pageLimit,
	})
	if err != nil {
		return nil, storageError(err, nil)
	}

	if near := strings.TrimSpace(opts.Near); near != "" {
		filtered := donations[:0]
		for _, d := range donations {
			if location.SameCity(s.classifier, d.PickupAddress, near) {
				filtered = append(filtered, d)
			}
		}
		donations = filtered
	}

	if opts.Limit > 0 && len(donations) > opts.Limit {
		donations = donations[:opts.Limit]
	}
	return donations, nil
}

// ListDonorDonations returns everything the donor has posted, newest first.
func (s *DonationService) ListDonorDonations(ctx context.Context, donorID string) ([]models.Donation, error) {
	donations, err := s.repo.ListDonations(ensuredContext(ctx), repository.DonationFilter{
		DonorID: donorID,
		Limit:   s.pageLimit,
	})
	if err != nil {
		return nil, storageError(err, nil)
	}
	return donations, nil
}

// ListClaimsForDonation returns the donation's claims in the given status (claimed when
// empty), newest first. Only the donation's donor may list them.
func (s *DonationService) ListClaimsForDonation(ctx context.Context, donorID, donationID string, status models.ClaimStatus) ([]models.Claim, error) {
	ctx = ensuredContext(ctx)

	donation, err := s.GetDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.DonorID != donorID {
		return nil, ErrNotOwner
	}
	if status == "" {
		status = models.ClaimClaimed
	}

	claims, err := s.repo.ListClaims(ctx, repository.ClaimFilter{
		DonationID: donationID,
		Status:     status,
		Limit:      s.pageLimit,
	})
	if err != nil {
		return nil, storageError(err, nil)
	}
	return claims, nil
}

// ListNGOClaims returns every claim the NGO has made, newest first.
func (s *DonationService) ListNGOClaims(ctx context.Context, ngoID string) ([]models.Claim, error) {
	claims, err := s.repo.ListClaims(ensuredContext(ctx), repository.ClaimFilter{
		NGOID: ngoID,
		Limit: s.pageLimit,
	})
	if err != nil {
		return nil, storageError(err, nil)
	}
	return claims, nil
}
