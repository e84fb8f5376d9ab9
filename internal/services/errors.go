package services

import (
	"errors"
	"net/http"

	"github.com/foodlinkhq/foodlink/internal/repository"
	apperrors "github.com/foodlinkhq/foodlink/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrEmailTaken is returned when signing up with an email already registered.
	ErrEmailTaken = apperrors.New("EMAIL_TAKEN", "An account with this email already exists", http.StatusConflict)
	// ErrRoleNotPermitted rejects operations reserved for the other account type.
	ErrRoleNotPermitted = apperrors.New("ROLE_NOT_PERMITTED", "Your account type cannot perform this action", http.StatusForbidden)
	// ErrNotOwner rejects changes to donations or claims owned by someone else.
	ErrNotOwner = apperrors.New("NOT_OWNER", "You do not own this resource", http.StatusForbidden)

	// ErrDonationNotFound indicates the donation does not exist.
	ErrDonationNotFound = apperrors.New("DONATION_NOT_FOUND", "Donation not found", http.StatusNotFound)
	// ErrDonationUnavailable is returned when a donation no longer accepts claims or approvals.
	ErrDonationUnavailable = apperrors.New("DONATION_UNAVAILABLE", "Donation is no longer available", http.StatusConflict)
	// ErrInvalidDonation reports a posting with missing required fields.
	ErrInvalidDonation = apperrors.New("INVALID_DONATION", "Donation is missing required fields", http.StatusBadRequest)

	// ErrClaimNotFound indicates the claim does not exist.
	ErrClaimNotFound = apperrors.New("CLAIM_NOT_FOUND", "Claim not found", http.StatusNotFound)
	// ErrClaimMismatch is returned when a claim does not reference the given donation.
	ErrClaimMismatch = apperrors.New("CLAIM_DONATION_MISMATCH", "Claim does not belong to this donation", http.StatusBadRequest)
	// ErrInvalidTransition rejects a status change not allowed from the current state.
	ErrInvalidTransition = apperrors.New("INVALID_STATUS_TRANSITION", "Status change not allowed from the current state", http.StatusConflict)

	// ErrFileNotFound indicates an unknown stored file.
	ErrFileNotFound = apperrors.New("FILE_NOT_FOUND", "File not found", http.StatusNotFound)
	// ErrInvalidBucket rejects uploads to buckets that are not configured.
	ErrInvalidBucket = apperrors.New("INVALID_BUCKET", "Unknown file bucket", http.StatusBadRequest)
	// ErrFileTooLarge rejects uploads over the configured size limit.
	ErrFileTooLarge = apperrors.New("FILE_TOO_LARGE", "File exceeds the upload size limit", http.StatusRequestEntityTooLarge)
)

// storageError converts repository failures into API errors, substituting notFound for
// missing records. Unavailability carries the underlying message to the caller.
func storageError(err error, notFound *apperrors.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repository.ErrUnavailable):
		return apperrors.ErrRepositoryUnavailable.WithMessage(err.Error()).WithInternal(err)
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.ErrInternalServer.WithInternal(err)
	}
}
