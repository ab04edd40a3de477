package converter

import (
	"healthsure/internal/delivery/dto"
	"healthsure/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Age:       patient.Age,
		City:      patient.City,
		Phone:     patient.Phone,
		Email:     patient.Email,
		ImageURL:  patient.ImageURL,
		CreatedAt: patient.CreatedAt,
		UpdatedAt: patient.UpdatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to slice of PatientResponse DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}

// PatientToDetailResponse includes the patient's policy summaries
func PatientToDetailResponse(patient *entity.Patient) *dto.PatientDetailResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientDetailResponse{
		PatientResponse: *PatientToResponse(patient),
		Policies:        PoliciesToSummaries(patient.Policies),
	}
}

func PatientToCreatedResponse(patient *entity.Patient) *dto.PatientCreatedResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientCreatedResponse{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Phone:     patient.Phone,
		ImageURL:  patient.ImageURL,
	}
}
