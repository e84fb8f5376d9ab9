package models

import (
	"time"

	"gorm.io/datatypes"
)

// DonationStatus tracks a listing through pickup.
type DonationStatus string

const (
	DonationAvailable DonationStatus = "available"
	DonationClaimed   DonationStatus = "claimed"
	DonationCollected DonationStatus = "collected"
	DonationCompleted DonationStatus = "completed"
)

// Donation is a donor's surplus-food listing.
type Donation struct {
	BaseModel

	DonorID       string                      `gorm:"type:varchar(36);not null;index" json:"donor_id"`
	Donor         *User                       `gorm:"foreignKey:DonorID" json:"-"`
	FoodType      string                      `gorm:"type:varchar(64);not null;index" json:"food_type"`
	Quantity      string                      `gorm:"type:varchar(120);not null" json:"quantity"`
	ExpiryDate    time.Time                   `gorm:"not null" json:"expiry_date"`
	PickupAddress string                      `gorm:"type:text;not null" json:"pickup_address"`
	PickupTime    string                      `gorm:"type:varchar(120);not null" json:"pickup_time"`
	ContactInfo   string                      `gorm:"type:varchar(255);not null" json:"contact_info"`
	Status        DonationStatus              `gorm:"type:varchar(16);not null;index" json:"status"`
	Description   string                      `gorm:"type:text" json:"description,omitempty"`
	Photos        datatypes.JSONSlice[string] `json:"photos,omitempty"`

	// ClaimedByClaimID is written in the same statement that moves the donation out of
	// available, so at most one claim can ever hold it.
	ClaimedByClaimID *string `gorm:"type:varchar(36);index" json:"claimed_by_claim_id,omitempty"`
}

func (Donation) TableName() string { return "food_donations" }

// IsAvailable reports whether the donation still accepts claims.
func (d *Donation) IsAvailable() bool {
	return d != nil && d.Status == DonationAvailable
}

// IsExpired reports whether the expiry date lies before now.
func (d *Donation) IsExpired(now time.Time) bool {
	return d != nil && !d.ExpiryDate.IsZero() && d.ExpiryDate.Before(now)
}
