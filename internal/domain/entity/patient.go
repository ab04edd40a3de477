package entity

import "time"

// Patient is an insured person. Policies are removed by the store's
// ON DELETE CASCADE when the patient row goes away.
type Patient struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Age       int       `gorm:"not null" json:"age"`
	City      string    `gorm:"type:varchar(100);not null" json:"city"`
	Phone     string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	ImageURL  *string   `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Policies []Policy `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"policies,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// HasImage reports whether an uploaded image is attached.
func (p *Patient) HasImage() bool {
	return p.ImageURL != nil && *p.ImageURL != ""
}
