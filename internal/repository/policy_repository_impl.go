package repository

import (
	"context"
	"errors"
	"time"

	"healthsure/internal/domain/entity"
	domainRepo "healthsure/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const sqlDate = "2006-01-02"

type policyRepository struct{}

func NewPolicyRepository() domainRepo.PolicyRepository {
	return &policyRepository{}
}

// policyHolder loads only the patient columns shown next to a policy.
func policyHolder(db *gorm.DB) *gorm.DB {
	return db.Select("id", "first_name", "last_name", "phone")
}

func (r *policyRepository) Create(ctx context.Context, db *gorm.DB, policy *entity.Policy) error {
	return translateError(db.WithContext(ctx).Omit("Patient").Create(policy).Error)
}

func (r *policyRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Policy, error) {
	var policies []entity.Policy
	err := db.WithContext(ctx).Preload("Patient", policyHolder).Order("id DESC").Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *policyRepository) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Policy, error) {
	var policy entity.Policy
	err := db.WithContext(ctx).Preload("Patient", policyHolder).Where("id = ?", id).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID int64) ([]entity.Policy, error) {
	var policies []entity.Policy
	err := db.WithContext(ctx).Where("patient_id = ?", patientID).Order("id DESC").Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *policyRepository) ExistsByPolicyNumber(ctx context.Context, db *gorm.DB, policyNumber string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Policy{}).Where("policy_number = ?", policyNumber).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Cancel atomically cancels a policy ONLY if it is still ACTIVE.
func (r *policyRepository) Cancel(ctx context.Context, db *gorm.DB, id int64, reason string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Policy{}).
		Where("id = ? AND status = ?", id, entity.PolicyStatusActive).
		Updates(map[string]interface{}{
			"status":        entity.PolicyStatusCancelled,
			"cancel_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// Renew re-activates an ACTIVE or EXPIRED policy with a new end date.
func (r *policyRepository) Renew(ctx context.Context, db *gorm.DB, id int64, endDate time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Policy{}).
		Where("id = ? AND status IN ?", id, []entity.PolicyStatus{entity.PolicyStatusActive, entity.PolicyStatusExpired}).
		Updates(map[string]interface{}{
			"status":        entity.PolicyStatusActive,
			"end_date":      gorm.Expr("?::date", endDate.Format(sqlDate)),
			"cancel_reason": nil,
		})
	return result.RowsAffected, result.Error
}

// ExpireEnded moves every ACTIVE policy whose end date lies before today to
// EXPIRED and returns the rows it changed.
func (r *policyRepository) ExpireEnded(ctx context.Context, db *gorm.DB, today time.Time) ([]entity.Policy, error) {
	var expired []entity.Policy
	err := db.WithContext(ctx).Model(&expired).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "patient_id"}, {Name: "policy_number"}, {Name: "end_date"}}}).
		Where("status = ? AND end_date < ?::date", entity.PolicyStatusActive, today.Format(sqlDate)).
		Update("status", entity.PolicyStatusExpired).Error
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (r *policyRepository) Stats(ctx context.Context, db *gorm.DB, expiringCutoff time.Time) (*entity.DashboardStats, error) {
	var stats entity.DashboardStats
	err := db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_policies,
			COUNT(*) FILTER (WHERE status = ?) AS active_policies,
			COUNT(*) FILTER (WHERE status = ?) AS cancelled_policies,
			COUNT(*) FILTER (WHERE status = ?) AS expired_policies,
			COUNT(*) FILTER (WHERE status = ? AND end_date <= ?::date) AS expiring_soon
		FROM policies`,
		entity.PolicyStatusActive,
		entity.PolicyStatusCancelled,
		entity.PolicyStatusExpired,
		entity.PolicyStatusActive, expiringCutoff.Format(sqlDate),
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
