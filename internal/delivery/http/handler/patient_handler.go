package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"healthsure/internal/delivery/dto"
	"healthsure/internal/usecase"
	"healthsure/pkg/response"
	"healthsure/pkg/validator"

	"github.com/gorilla/mux"
)

const (
	imageField = "image"

	// multipartOverhead is the room left for form fields and boundaries on
	// top of the image size limit.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
	maxBodyBytes   int64
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator, maxImageBytes int64) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
		maxBodyBytes:   maxImageBytes + multipartOverhead,
	}
}

// GetAll handles listing patients
// @Summary List patients
// @Tags Patients
// @Produce json
// @Success 200 {object} response.Response
// @Router /patients [get]
func (h *PatientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patientUsecase.GetAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get patients")
		return
	}

	response.List(w, "", patients, len(patients))
}

// GetByID handles getting a patient with its policies
// @Summary Get patient by ID
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [get]
func (h *PatientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	patient, err := h.patientUsecase.GetByID(r.Context(), id)
	h.writePatient(w, patient, err)
}

// FindByPhone handles phone prefix search
// @Summary Find the first patient whose phone starts with the given digits
// @Tags Patients
// @Produce json
// @Param phone path string true "Phone prefix"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/phone/{phone} [get]
func (h *PatientHandler) FindByPhone(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.FindByPhone(r.Context(), mux.Vars(r)["phone"])
	h.writePatient(w, patient, err)
}

// FindByEmail handles email search
// @Summary Find the first patient whose email contains the given text
// @Tags Patients
// @Produce json
// @Param email path string true "Email fragment"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/email/{email} [get]
func (h *PatientHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.FindByEmail(r.Context(), mux.Vars(r)["email"])
	h.writePatient(w, patient, err)
}

// FindByName handles name search
// @Summary Find the first patient whose full name contains the given text
// @Tags Patients
// @Produce json
// @Param name path string true "Name fragment"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/name/{name} [get]
func (h *PatientHandler) FindByName(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.FindByName(r.Context(), mux.Vars(r)["name"])
	h.writePatient(w, patient, err)
}

func (h *PatientHandler) writePatient(w http.ResponseWriter, patient *dto.PatientDetailResponse, err error) {
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "", patient)
}

// GetPolicies handles listing the policies of one patient
// @Summary List a patient's policies
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id}/policies [get]
func (h *PatientHandler) GetPolicies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	policies, err := h.patientUsecase.GetPolicies(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get policies")
		}
		return
	}

	response.List(w, "", policies, len(policies))
}

// Create handles patient creation
// @Summary Create a patient
// @Description Accepts JSON or a multipart form with an optional "image" file
// @Tags Patients
// @Accept json,mpfd
// @Produce json
// @Param request body dto.CreatePatientRequest true "Create Patient Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /patients [post]
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var (
		req   dto.CreatePatientRequest
		image io.Reader
	)

	if isMultipart(r) {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if !writeImageError(w, err) {
				response.BadRequest(w, "Invalid multipart form")
			}
			return
		}
		defer r.MultipartForm.RemoveAll()

		if err := decodePatientForm(r.MultipartForm, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		file, _, err := r.FormFile(imageField)
		switch {
		case err == nil:
			defer file.Close()
			image = file
		case !errors.Is(err, http.ErrMissingFile):
			response.BadRequest(w, "Invalid image upload")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.PayloadTooLarge(w, "")
			return
		}
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.Create(r.Context(), &req, image)
	if err != nil {
		if writeImageError(w, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrPhoneExists):
			response.BadRequest(w, "Phone number already exists")
		default:
			response.InternalServerError(w, "Failed to create patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient created successfully", patient)
}

// Update handles patient update
// @Summary Update a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path int true "Patient ID"
// @Param request body dto.UpdatePatientRequest true "Update Patient Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [put]
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	var req dto.UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		case errors.Is(err, usecase.ErrPhoneExists):
			response.BadRequest(w, "Phone number already exists")
		default:
			response.InternalServerError(w, "Failed to update patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient updated successfully", patient)
}

// UpdateImage handles replacing a patient's image
// @Summary Replace a patient's image
// @Tags Patients
// @Accept mpfd
// @Produce json
// @Param id path int true "Patient ID"
// @Param image formData file true "Image file"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /patients/{id}/image [put]
func (h *PatientHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if !isMultipart(r) {
		response.BadRequest(w, "Image upload must be multipart/form-data")
		return
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if !writeImageError(w, err) {
			response.BadRequest(w, "Invalid multipart form")
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(imageField)
	if err != nil {
		response.BadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	result, err := h.patientUsecase.UpdateImage(r.Context(), id, file)
	if err != nil {
		if writeImageError(w, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to update image")
		}
		return
	}

	response.Success(w, http.StatusOK, "Image updated successfully", result)
}

// Delete handles patient deletion
// @Summary Delete a patient and all of its policies
// @Tags Patients
// @Produce json
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [delete]
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid patient ID")
		return
	}

	if err := h.patientUsecase.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, usecase.ErrPatientNotFound):
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to delete patient")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient deleted successfully (with all policies via CASCADE)", nil)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func decodePatientForm(form *multipart.Form, req *dto.CreatePatientRequest) error {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	req.FirstName = value("first_name")
	req.LastName = value("last_name")
	req.City = value("city")
	req.Phone = value("phone")
	req.Email = value("email")

	if raw := value("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return errors.New("age must be a whole number")
		}
		req.Age = age
	}
	return nil
}
