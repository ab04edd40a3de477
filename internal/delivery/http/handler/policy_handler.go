package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"healthsure/internal/delivery/dto"
	"healthsure/internal/usecase"
	"healthsure/pkg/response"
	"healthsure/pkg/validator"
)

type PolicyHandler struct {
	policyUsecase usecase.PolicyUsecase
	validator     *validator.CustomValidator
}

func NewPolicyHandler(policyUsecase usecase.PolicyUsecase, validator *validator.CustomValidator) *PolicyHandler {
	return &PolicyHandler{
		policyUsecase: policyUsecase,
		validator:     validator,
	}
}

// GetAll handles listing policies with their holders
// @Summary List policies
// @Tags Policies
// @Produce json
// @Success 200 {object} response.Response
// @Router /policies [get]
func (h *PolicyHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	policies, err := h.policyUsecase.GetAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get policies")
		return
	}

	response.List(w, "", policies, len(policies))
}

// GetByID handles getting a policy
// @Summary Get policy by ID
// @Tags Policies
// @Produce json
// @Param id path int true "Policy ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id} [get]
func (h *PolicyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid policy ID")
		return
	}

	policy, err := h.policyUsecase.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPolicyNotFound):
			response.NotFound(w, "Policy not found")
		default:
			response.InternalServerError(w, "Failed to get policy")
		}
		return
	}

	response.Success(w, http.StatusOK, "", policy)
}

// Create handles policy creation
// @Summary Create a policy
// @Tags Policies
// @Accept json
// @Produce json
// @Param request body dto.CreatePolicyRequest true "Create Policy Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /policies [post]
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	policy, err := h.policyUsecase.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPolicyHolderNotFound):
			response.BadRequest(w, "Patient not found")
		case errors.Is(err, usecase.ErrPolicyNumberExists):
			response.BadRequest(w, "Policy number already exists")
		case errors.Is(err, usecase.ErrInvalidDate),
			errors.Is(err, usecase.ErrInvalidDateRange),
			errors.Is(err, usecase.ErrInvalidSumInsured):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create policy")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Policy created successfully", policy)
}

// Cancel handles policy cancellation
// @Summary Cancel an ACTIVE policy
// @Tags Policies
// @Accept json
// @Produce json
// @Param id path int true "Policy ID"
// @Param request body dto.CancelPolicyRequest true "Cancel Policy Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id}/cancel [put]
func (h *PolicyHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid policy ID")
		return
	}

	var req dto.CancelPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.policyUsecase.Cancel(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPolicyNotFound):
			response.NotFound(w, "Policy not found")
		case errors.Is(err, usecase.ErrPolicyNotCancellable):
			response.BadRequest(w, "Policy not found or already cancelled/expired")
		case errors.Is(err, usecase.ErrCancelReasonRequired):
			response.ValidationError(w, map[string]string{"reason": "reason is required"})
		default:
			response.InternalServerError(w, "Failed to cancel policy")
		}
		return
	}

	response.Success(w, http.StatusOK, "Policy cancelled successfully", result)
}

// Renew handles policy renewal
// @Summary Renew an ACTIVE or EXPIRED policy
// @Tags Policies
// @Accept json
// @Produce json
// @Param id path int true "Policy ID"
// @Param request body dto.RenewPolicyRequest true "Renew Policy Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /policies/{id}/renew [put]
func (h *PolicyHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid policy ID")
		return
	}

	var req dto.RenewPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.policyUsecase.Renew(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPolicyNotFound):
			response.NotFound(w, "Policy not found")
		case errors.Is(err, usecase.ErrPolicyNotRenewable):
			response.BadRequest(w, "Policy not found or already cancelled")
		case errors.Is(err, usecase.ErrInvalidDate), errors.Is(err, usecase.ErrInvalidDateRange):
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to renew policy")
		}
		return
	}

	response.Success(w, http.StatusOK, "Policy renewed successfully", result)
}

// Dashboard handles the policy counters
// @Summary Policy counts by status and expiring soon
// @Tags Policies
// @Produce json
// @Success 200 {object} response.Response
// @Router /policies/dashboard [get]
func (h *PolicyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.policyUsecase.Dashboard(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get dashboard")
		return
	}

	response.Success(w, http.StatusOK, "", stats)
}
