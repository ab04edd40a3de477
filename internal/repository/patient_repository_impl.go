package repository

import (
	"context"
	"errors"

	"healthsure/internal/domain/entity"
	domainRepo "healthsure/internal/domain/repository"

	"gorm.io/gorm"
)

type patientRepository struct{}

func NewPatientRepository() domainRepo.PatientRepository {
	return &patientRepository{}
}

// policySummary limits embedded policies to the columns search results show.
func policySummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "patient_id", "policy_number", "plan_name", "status", "end_date").Order("id ASC")
}

func (r *patientRepository) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return translateError(db.WithContext(ctx).Omit("Policies").Create(patient).Error)
}

func (r *patientRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := db.WithContext(ctx).Order("id DESC").Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Patient, error) {
	var patient entity.Patient
	err := db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByIDWithPolicies(ctx context.Context, db *gorm.DB, id int64) (*entity.Patient, error) {
	return r.findFirst(db.WithContext(ctx).Where("id = ?", id))
}

func (r *patientRepository) FindFirstByPhonePrefix(ctx context.Context, db *gorm.DB, prefix string) (*entity.Patient, error) {
	return r.findFirst(db.WithContext(ctx).Where("phone LIKE ?", escapeLike(prefix)+"%"))
}

func (r *patientRepository) FindFirstByEmail(ctx context.Context, db *gorm.DB, fragment string) (*entity.Patient, error) {
	return r.findFirst(db.WithContext(ctx).Where("email ILIKE ?", "%"+escapeLike(fragment)+"%"))
}

func (r *patientRepository) FindFirstByName(ctx context.Context, db *gorm.DB, fragment string) (*entity.Patient, error) {
	return r.findFirst(db.WithContext(ctx).Where("(first_name || ' ' || last_name) ILIKE ?", "%"+escapeLike(fragment)+"%"))
}

// findFirst returns the lowest-id match with its policies attached.
func (r *patientRepository) findFirst(query *gorm.DB) (*entity.Patient, error) {
	var patient entity.Patient
	err := query.Preload("Policies", policySummary).Order("id ASC").First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if patient.Policies == nil {
		patient.Policies = []entity.Policy{}
	}
	return &patient, nil
}

func (r *patientRepository) ExistsByPhone(ctx context.Context, db *gorm.DB, phone string, excludeID int64) (bool, error) {
	var count int64
	query := db.WithContext(ctx).Model(&entity.Patient{}).Where("phone = ?", phone)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *patientRepository) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("id = ?", patient.ID).
		Updates(map[string]interface{}{
			"first_name": patient.FirstName,
			"last_name":  patient.LastName,
			"age":        patient.Age,
			"city":       patient.City,
			"phone":      patient.Phone,
			"email":      patient.Email,
		})
	return result.RowsAffected, translateError(result.Error)
}

func (r *patientRepository) UpdateImage(ctx context.Context, db *gorm.DB, id int64, imageURL string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Patient{}).
		Where("id = ?", id).
		Update("image_url", imageURL)
	return result.RowsAffected, result.Error
}

// Delete removes the patient; the policies foreign key cascades.
func (r *patientRepository) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Patient{})
	return result.RowsAffected, result.Error
}
