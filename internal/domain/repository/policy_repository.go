package repository

import (
	"context"
	"time"

	"healthsure/internal/domain/entity"

	"gorm.io/gorm"
)

type PolicyRepository interface {
	Create(ctx context.Context, db *gorm.DB, policy *entity.Policy) error
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Policy, error)
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Policy, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID int64) ([]entity.Policy, error)
	ExistsByPolicyNumber(ctx context.Context, db *gorm.DB, policyNumber string) (bool, error)
	// Cancel and Renew are conditional on the current status and return the
	// number of rows changed; 0 means the guard did not match.
	Cancel(ctx context.Context, db *gorm.DB, id int64, reason string) (int64, error)
	Renew(ctx context.Context, db *gorm.DB, id int64, endDate time.Time) (int64, error)
	ExpireEnded(ctx context.Context, db *gorm.DB, today time.Time) ([]entity.Policy, error)
	Stats(ctx context.Context, db *gorm.DB, expiringCutoff time.Time) (*entity.DashboardStats, error)
}
