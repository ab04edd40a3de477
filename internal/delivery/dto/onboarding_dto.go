package dto

import (
	"time"

	"healthsure/internal/onboarding"
)

type OnboardingSessionResponse struct {
	SessionID string              `json:"session_id"`
	Step      int                 `json:"step"`
	StepName  string              `json:"step_name"`
	Data      onboarding.Data     `json:"data"`
	Summary   *onboarding.Summary `json:"summary,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
