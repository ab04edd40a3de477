package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PolicyStatus represents the lifecycle state of a policy
type PolicyStatus string

const (
	PolicyStatusActive    PolicyStatus = "ACTIVE"
	PolicyStatusCancelled PolicyStatus = "CANCELLED"
	PolicyStatusExpired   PolicyStatus = "EXPIRED"
)

// ExpiringSoonWindow is how far ahead the dashboard looks for ACTIVE policies
// about to lapse.
const ExpiringSoonWindow = 30 * 24 * time.Hour

// Policy is an insurance policy owned by exactly one patient.
type Policy struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID    int64           `gorm:"not null;index" json:"patient_id"`
	PolicyNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"policy_number"`
	PlanName     string          `gorm:"type:varchar(100);not null" json:"plan_name"`
	SumInsured   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"sum_insured"`
	StartDate    time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate      time.Time       `gorm:"type:date;not null;index" json:"end_date"`
	Status       PolicyStatus    `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CancelReason *string         `gorm:"type:text" json:"cancel_reason"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Policy) TableName() string {
	return "policies"
}

// CanCancel mirrors the guard of the conditional cancel update.
func (p *Policy) CanCancel() bool {
	return p.Status == PolicyStatusActive
}

// CanRenew mirrors the guard of the conditional renew update.
func (p *Policy) CanRenew() bool {
	return p.Status == PolicyStatusActive || p.Status == PolicyStatusExpired
}

// DashboardStats is the policy aggregate shown on the dashboard.
type DashboardStats struct {
	TotalPolicies     int64 `json:"total_policies"`
	ActivePolicies    int64 `json:"active_policies"`
	CancelledPolicies int64 `json:"cancelled_policies"`
	ExpiredPolicies   int64 `json:"expired_policies"`
	ExpiringSoon      int64 `json:"expiring_soon"`
}
