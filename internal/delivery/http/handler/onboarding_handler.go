package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"healthsure/internal/usecase"
	"healthsure/pkg/response"

	"github.com/gorilla/mux"
)

type OnboardingHandler struct {
	onboardingUsecase usecase.OnboardingUsecase
}

func NewOnboardingHandler(onboardingUsecase usecase.OnboardingUsecase) *OnboardingHandler {
	return &OnboardingHandler{onboardingUsecase: onboardingUsecase}
}

// Start opens a new wizard session at step 1
// @Summary Start onboarding
// @Tags Onboarding
// @Produce json
// @Success 201 {object} response.Response
// @Router /onboarding [post]
func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.onboardingUsecase.Start(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to start onboarding")
		return
	}

	response.Success(w, http.StatusCreated, "Onboarding started", session)
}

// Get returns the session state
// @Summary Get onboarding session
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /onboarding/{id} [get]
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.onboardingUsecase.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "", session)
}

// Next submits the fields of the current step
// @Summary Validate the current step and advance
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /onboarding/{id}/next [post]
func (h *OnboardingHandler) Next(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	session, err := h.onboardingUsecase.Next(r.Context(), mux.Vars(r)["id"], values)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "", session)
}

// Back returns to the previous step
// @Summary Go back one step
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /onboarding/{id}/back [post]
func (h *OnboardingHandler) Back(w http.ResponseWriter, r *http.Request) {
	session, err := h.onboardingUsecase.Back(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "", session)
}

// Submit creates the patient from a confirmed session
// @Summary Submit onboarding
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /onboarding/{id}/submit [post]
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	patient, err := h.onboardingUsecase.Submit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Patient created successfully", patient)
}

// Abandon drops the session
// @Summary Abandon onboarding
// @Tags Onboarding
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /onboarding/{id} [delete]
func (h *OnboardingHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.onboardingUsecase.Abandon(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Onboarding abandoned", nil)
}

func (h *OnboardingHandler) writeError(w http.ResponseWriter, err error) {
	var stepErr *usecase.StepValidationError
	switch {
	case errors.As(err, &stepErr):
		response.ValidationError(w, stepErr.Fields)
	case errors.Is(err, usecase.ErrSessionNotFound):
		response.NotFound(w, "Onboarding session not found")
	case errors.Is(err, usecase.ErrInvalidStep):
		response.BadRequest(w, "Action not allowed at the current step")
	case errors.Is(err, usecase.ErrPhoneExists):
		response.BadRequest(w, "Phone number already exists")
	default:
		response.InternalServerError(w, "Onboarding request failed")
	}
}
