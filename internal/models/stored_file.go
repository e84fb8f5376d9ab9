package models

// StoredFile records metadata for an uploaded blob; the bytes live in the blob store.
type StoredFile struct {
	BaseModel

	Bucket      string `gorm:"type:varchar(64);not null;index" json:"bucket"`
	OwnerID     string `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Name        string `gorm:"type:varchar(255)" json:"name"`
	ContentType string `gorm:"type:varchar(120)" json:"content_type"`
	Size        int64  `json:"size"`
}
