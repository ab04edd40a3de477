package usecase

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"healthsure/internal/converter"
	"healthsure/internal/delivery/dto"
	"healthsure/internal/domain/entity"
	"healthsure/internal/domain/repository"
	"healthsure/internal/infrastructure/storage"
	"healthsure/internal/service"
	"healthsure/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrPhoneExists     = errors.New("patient with this phone already exists")
)

type PatientUsecase interface {
	GetAll(ctx context.Context) ([]dto.PatientResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.PatientDetailResponse, error)
	FindByPhone(ctx context.Context, phone string) (*dto.PatientDetailResponse, error)
	FindByEmail(ctx context.Context, email string) (*dto.PatientDetailResponse, error)
	FindByName(ctx context.Context, name string) (*dto.PatientDetailResponse, error)
	GetPolicies(ctx context.Context, id int64) ([]dto.PolicyResponse, error)
	Create(ctx context.Context, req *dto.CreatePatientRequest, image io.Reader) (*dto.PatientCreatedResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	UpdateImage(ctx context.Context, id int64, image io.Reader) (*dto.PatientImageResponse, error)
	Delete(ctx context.Context, id int64) error
}

type patientUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	policyRepo   repository.PolicyRepository
	images       storage.ImageStore
	auditService service.AuditService
	dashboard    service.DashboardCache
	now          func() time.Time
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	policyRepo repository.PolicyRepository,
	images storage.ImageStore,
	auditService service.AuditService,
	dashboard service.DashboardCache,
) PatientUsecase {
	return &patientUsecase{
		db:           db,
		log:          log,
		patientRepo:  patientRepo,
		policyRepo:   policyRepo,
		images:       images,
		auditService: auditService,
		dashboard:    dashboard,
		now:          time.Now,
	}
}

func (u *patientUsecase) GetAll(ctx context.Context) ([]dto.PatientResponse, error) {
	patients, err := u.patientRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find all patients: %+v", err)
		return nil, err
	}

	return converter.PatientsToResponses(patients), nil
}

func (u *patientUsecase) GetByID(ctx context.Context, id int64) (*dto.PatientDetailResponse, error) {
	patient, err := u.patientRepo.FindByIDWithPolicies(ctx, u.db, id)
	return u.detail(patient, err, "id", strconv.FormatInt(id, 10))
}

// FindByPhone matches the first patient whose phone starts with phone.
func (u *patientUsecase) FindByPhone(ctx context.Context, phone string) (*dto.PatientDetailResponse, error) {
	prefix := validator.NormalizePhone(phone)
	if prefix == "" {
		return nil, ErrPatientNotFound
	}
	patient, err := u.patientRepo.FindFirstByPhonePrefix(ctx, u.db, prefix)
	return u.detail(patient, err, "phone", phone)
}

// FindByEmail matches the first patient whose email contains email.
func (u *patientUsecase) FindByEmail(ctx context.Context, email string) (*dto.PatientDetailResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrPatientNotFound
	}
	patient, err := u.patientRepo.FindFirstByEmail(ctx, u.db, email)
	return u.detail(patient, err, "email", email)
}

// FindByName matches the first patient whose "first last" name contains name.
func (u *patientUsecase) FindByName(ctx context.Context, name string) (*dto.PatientDetailResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPatientNotFound
	}
	patient, err := u.patientRepo.FindFirstByName(ctx, u.db, name)
	return u.detail(patient, err, "name", name)
}

func (u *patientUsecase) detail(patient *entity.Patient, err error, by, value string) (*dto.PatientDetailResponse, error) {
	if err != nil {
		u.log.Warnf("Failed to find patient by %s %q: %+v", by, value, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return converter.PatientToDetailResponse(patient), nil
}

func (u *patientUsecase) GetPolicies(ctx context.Context, id int64) ([]dto.PolicyResponse, error) {
	if _, err := u.findPatient(ctx, id); err != nil {
		return nil, err
	}

	policies, err := u.policyRepo.FindByPatientID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find policies for patient %d: %+v", id, err)
		return nil, err
	}

	return converter.PoliciesToResponses(policies), nil
}

// Create inserts a patient. When image is non-nil it is stored first and
// removed again if the insert fails.
func (u *patientUsecase) Create(ctx context.Context, req *dto.CreatePatientRequest, image io.Reader) (*dto.PatientCreatedResponse, error) {
	phone := validator.NormalizePhone(req.Phone)

	exists, err := u.patientRepo.ExistsByPhone(ctx, u.db, phone, 0)
	if err != nil {
		u.log.Warnf("Failed to check phone %s: %+v", phone, err)
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	patient := &entity.Patient{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Age:       req.Age,
		City:      strings.TrimSpace(req.City),
		Phone:     phone,
		Email:     strings.TrimSpace(req.Email),
	}

	if image != nil {
		url, err := u.images.Save(ctx, image)
		if err != nil {
			u.log.Warnf("Failed to store patient image: %+v", err)
			return nil, err
		}
		patient.ImageURL = &url
	}

	if err := u.patientRepo.Create(ctx, u.db, patient); err != nil {
		if patient.HasImage() {
			u.removeImage(ctx, *patient.ImageURL)
		}
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrPhoneExists
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, u.db, entity.AuditActionPatientCreate, entity.AuditEntityPatient,
		strconv.FormatInt(patient.ID, 10), converter.PatientToResponse(patient))

	return converter.PatientToCreatedResponse(patient), nil
}

func (u *patientUsecase) Update(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	patient, err := u.findPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	old := converter.PatientToResponse(patient)

	phone := validator.NormalizePhone(req.Phone)
	exists, err := u.patientRepo.ExistsByPhone(ctx, u.db, phone, id)
	if err != nil {
		u.log.Warnf("Failed to check phone %s: %+v", phone, err)
		return nil, err
	}
	if exists {
		return nil, ErrPhoneExists
	}

	patient.FirstName = strings.TrimSpace(req.FirstName)
	patient.LastName = strings.TrimSpace(req.LastName)
	patient.Age = req.Age
	patient.City = strings.TrimSpace(req.City)
	patient.Phone = phone
	patient.Email = strings.TrimSpace(req.Email)

	rows, err := u.patientRepo.Update(ctx, u.db, patient)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrPhoneExists
		}
		u.log.Warnf("Failed to update patient %d: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrPatientNotFound
	}
	patient.UpdatedAt = u.now()

	resp := converter.PatientToResponse(patient)
	u.auditService.LogUpdate(ctx, u.db, entity.AuditActionPatientUpdate, entity.AuditEntityPatient,
		strconv.FormatInt(id, 10), old, resp)

	return resp, nil
}

// UpdateImage stores the new image, points the patient at it and then drops
// the previous file.
func (u *patientUsecase) UpdateImage(ctx context.Context, id int64, image io.Reader) (*dto.PatientImageResponse, error) {
	patient, err := u.findPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := u.images.Save(ctx, image)
	if err != nil {
		u.log.Warnf("Failed to store image for patient %d: %+v", id, err)
		return nil, err
	}

	rows, err := u.patientRepo.UpdateImage(ctx, u.db, id, url)
	if err != nil || rows == 0 {
		u.removeImage(ctx, url)
		if err != nil {
			u.log.Warnf("Failed to update image of patient %d: %+v", id, err)
			return nil, err
		}
		return nil, ErrPatientNotFound
	}

	var oldURL interface{}
	if patient.HasImage() {
		oldURL = *patient.ImageURL
		u.removeImage(ctx, *patient.ImageURL)
	}

	u.auditService.LogUpdate(ctx, u.db, entity.AuditActionPatientImage, entity.AuditEntityPatient,
		strconv.FormatInt(id, 10), oldURL, url)

	return &dto.PatientImageResponse{ID: id, ImageURL: url}, nil
}

// Delete removes the patient and, through the foreign key, its policies.
// The image file is removed afterwards on a best effort basis.
func (u *patientUsecase) Delete(ctx context.Context, id int64) error {
	patient, err := u.findPatient(ctx, id)
	if err != nil {
		return err
	}

	rows, err := u.patientRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete patient %d: %+v", id, err)
		return err
	}
	if rows == 0 {
		return ErrPatientNotFound
	}

	if patient.HasImage() {
		u.removeImage(ctx, *patient.ImageURL)
	}

	u.dashboard.Invalidate(ctx)
	u.auditService.LogDelete(ctx, u.db, entity.AuditActionPatientDelete, entity.AuditEntityPatient,
		strconv.FormatInt(id, 10), converter.PatientToResponse(patient))

	return nil
}

func (u *patientUsecase) findPatient(ctx context.Context, id int64) (*entity.Patient, error) {
	patient, err := u.patientRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", id, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patient, nil
}

func (u *patientUsecase) removeImage(ctx context.Context, url string) {
	if err := u.images.Remove(ctx, url); err != nil {
		u.log.Warnf("Failed to remove image %s: %+v", url, err)
	}
}
