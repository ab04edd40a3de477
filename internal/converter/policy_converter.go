package converter

import (
	"healthsure/internal/delivery/dto"
	"healthsure/internal/domain/entity"
)

// DateLayout is the wire format of policy dates.
const DateLayout = "2006-01-02"

// PolicyToResponse converts a Policy entity to PolicyResponse DTO
func PolicyToResponse(policy *entity.Policy) *dto.PolicyResponse {
	if policy == nil {
		return nil
	}

	resp := &dto.PolicyResponse{
		ID:           policy.ID,
		PatientID:    policy.PatientID,
		PolicyNumber: policy.PolicyNumber,
		PlanName:     policy.PlanName,
		SumInsured:   policy.SumInsured,
		StartDate:    policy.StartDate.Format(DateLayout),
		EndDate:      policy.EndDate.Format(DateLayout),
		Status:       string(policy.Status),
		CancelReason: policy.CancelReason,
		CreatedAt:    policy.CreatedAt,
		UpdatedAt:    policy.UpdatedAt,
	}

	if policy.Patient != nil {
		resp.FirstName = policy.Patient.FirstName
		resp.LastName = policy.Patient.LastName
		resp.Phone = policy.Patient.Phone
	}

	return resp
}

// PoliciesToResponses converts a slice of Policy entities to slice of PolicyResponse DTOs
func PoliciesToResponses(policies []entity.Policy) []dto.PolicyResponse {
	responses := make([]dto.PolicyResponse, len(policies))
	for i := range policies {
		responses[i] = *PolicyToResponse(&policies[i])
	}
	return responses
}

// PoliciesToSummaries never returns nil so the JSON is always an array.
func PoliciesToSummaries(policies []entity.Policy) []dto.PolicySummaryResponse {
	summaries := make([]dto.PolicySummaryResponse, len(policies))
	for i, p := range policies {
		summaries[i] = dto.PolicySummaryResponse{
			ID:           p.ID,
			PolicyNumber: p.PolicyNumber,
			PlanName:     p.PlanName,
			Status:       string(p.Status),
			EndDate:      p.EndDate.Format(DateLayout),
		}
	}
	return summaries
}

func DashboardStatsToResponse(stats *entity.DashboardStats) *dto.DashboardResponse {
	if stats == nil {
		return nil
	}

	return &dto.DashboardResponse{
		TotalPolicies:     stats.TotalPolicies,
		ActivePolicies:    stats.ActivePolicies,
		CancelledPolicies: stats.CancelledPolicies,
		ExpiredPolicies:   stats.ExpiredPolicies,
		ExpiringSoon:      stats.ExpiringSoon,
	}
}
