package models

// NGOProfile holds organisation details for an NGO account. IsVerified is only ever
// flipped by an operator, never through the API.
type NGOProfile struct {
	BaseModel

	UserID     string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
	User       *User  `gorm:"foreignKey:UserID" json:"-"`
	NGOName    string `gorm:"column:ngo_name;type:varchar(200)" json:"ngo_name"`
	NGOAddress string `gorm:"column:ngo_address;type:text" json:"ngo_address"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`
	NGODocs    string `gorm:"column:ngo_docs;type:text" json:"ngo_docs,omitempty"`
}

func (NGOProfile) TableName() string { return "ngo_data" }
