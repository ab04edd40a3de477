package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

type CreatePolicyRequest struct {
	PatientID    int64           `json:"patient_id" validate:"required,gt=0"`
	PolicyNumber string          `json:"policy_number" validate:"required,max=50"`
	PlanName     string          `json:"plan_name" validate:"required,max=100"`
	SumInsured   decimal.Decimal `json:"sum_insured" validate:"required"`
	StartDate    string          `json:"start_date" validate:"required,date"`
	EndDate      string          `json:"end_date" validate:"required,date"`
}

type CancelPolicyRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type RenewPolicyRequest struct {
	EndDate string `json:"end_date" validate:"required,date"`
}

// Response DTOs

// PolicyResponse carries the owning patient's name and phone next to the
// policy columns.
type PolicyResponse struct {
	ID           int64           `json:"id"`
	PatientID    int64           `json:"patient_id"`
	PolicyNumber string          `json:"policy_number"`
	PlanName     string          `json:"plan_name"`
	SumInsured   decimal.Decimal `json:"sum_insured"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Status       string          `json:"status"`
	CancelReason *string         `json:"cancel_reason"`
	FirstName    string          `json:"first_name,omitempty"`
	LastName     string          `json:"last_name,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type PolicySummaryResponse struct {
	ID           int64  `json:"id"`
	PolicyNumber string `json:"policy_number"`
	PlanName     string `json:"plan_name"`
	Status       string `json:"status"`
	EndDate      string `json:"end_date"`
}

type PolicyCreatedResponse struct {
	ID           int64  `json:"id"`
	PolicyNumber string `json:"policy_number"`
}

type PolicyStatusResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	EndDate string `json:"end_date,omitempty"`
}

type DashboardResponse struct {
	TotalPolicies     int64 `json:"total_policies"`
	ActivePolicies    int64 `json:"active_policies"`
	CancelledPolicies int64 `json:"cancelled_policies"`
	ExpiredPolicies   int64 `json:"expired_policies"`
	ExpiringSoon      int64 `json:"expiring_soon"`
}
