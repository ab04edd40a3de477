package dto

import "time"

// Request DTOs

type CreatePatientRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
	City      string `json:"city" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,phone"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

type UpdatePatientRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
	City      string `json:"city" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,phone"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

// Response DTOs

type PatientResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PatientDetailResponse is a patient with the summaries of its policies.
// Policies is always an array, empty when the patient has none.
type PatientDetailResponse struct {
	PatientResponse
	Policies []PolicySummaryResponse `json:"policies"`
}

type PatientCreatedResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	ImageURL  *string `json:"image_url"`
}

type PatientImageResponse struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
}
