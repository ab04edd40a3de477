package converter

import (
	"healthsure/internal/delivery/dto"
	"healthsure/internal/onboarding"
)

// SessionToResponse converts a wizard session; summary is only set at the
// confirmation step.
func SessionToResponse(session *onboarding.Session, summary *onboarding.Summary) *dto.OnboardingSessionResponse {
	if session == nil {
		return nil
	}

	return &dto.OnboardingSessionResponse{
		SessionID: session.ID,
		Step:      int(session.Step),
		StepName:  session.Step.String(),
		Data:      session.Data,
		Summary:   summary,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}
