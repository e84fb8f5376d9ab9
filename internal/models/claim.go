package models

import "time"

// ClaimStatus tracks an NGO's request against a donation.
type ClaimStatus string

const (
	ClaimClaimed   ClaimStatus = "claimed"
	ClaimConfirmed ClaimStatus = "confirmed"
	ClaimCollected ClaimStatus = "collected"
	ClaimCompleted ClaimStatus = "completed"
)

// ParseClaimStatus validates a claim status string.
func ParseClaimStatus(value string) (ClaimStatus, bool) {
	status := ClaimStatus(value)
	switch status {
	case ClaimClaimed, ClaimConfirmed, ClaimCollected, ClaimCompleted:
		return status, true
	default:
		return "", false
	}
}

// Claim is an NGO's intent to collect a specific donation.
type Claim struct {
	BaseModel

	DonationID      string      `gorm:"type:varchar(36);not null;index" json:"donation_id"`
	Donation        *Donation   `gorm:"foreignKey:DonationID" json:"-"`
	NGOID           string      `gorm:"column:ngo_id;type:varchar(36);not null;index" json:"ngo_id"`
	NGO             *User       `gorm:"foreignKey:NGOID" json:"-"`
	ClaimedAt       time.Time   `gorm:"not null" json:"claimed_at"`
	PickupScheduled *time.Time  `json:"pickup_scheduled,omitempty"`
	Status          ClaimStatus `gorm:"type:varchar(16);not null;index" json:"status"`
}

func (Claim) TableName() string { return "donation_claims" }
