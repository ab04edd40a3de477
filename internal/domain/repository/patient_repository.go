package repository

import (
	"context"

	"healthsure/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Patient, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Patient, error)
	FindByIDWithPolicies(ctx context.Context, db *gorm.DB, id int64) (*entity.Patient, error)
	FindFirstByPhonePrefix(ctx context.Context, db *gorm.DB, prefix string) (*entity.Patient, error)
	FindFirstByEmail(ctx context.Context, db *gorm.DB, fragment string) (*entity.Patient, error)
	FindFirstByName(ctx context.Context, db *gorm.DB, fragment string) (*entity.Patient, error)
	ExistsByPhone(ctx context.Context, db *gorm.DB, phone string, excludeID int64) (bool, error)
	Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error)
	UpdateImage(ctx context.Context, db *gorm.DB, id int64, imageURL string) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}
