package usecase

import (
	"context"
	"io"
	"time"

	"healthsure/internal/domain/entity"
	"healthsure/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newNoopLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type PatientRepoMock struct{ mock.Mock }

func (m *PatientRepoMock) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	return m.Called(ctx, db, patient).Error(0)
}

func (m *PatientRepoMock) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Patient, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Patient), args.Error(1)
}

func (m *PatientRepoMock) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Patient, error) {
	return m.patient(m.Called(ctx, db, id))
}

func (m *PatientRepoMock) FindByIDWithPolicies(ctx context.Context, db *gorm.DB, id int64) (*entity.Patient, error) {
	return m.patient(m.Called(ctx, db, id))
}

func (m *PatientRepoMock) FindFirstByPhonePrefix(ctx context.Context, db *gorm.DB, prefix string) (*entity.Patient, error) {
	return m.patient(m.Called(ctx, db, prefix))
}

func (m *PatientRepoMock) FindFirstByEmail(ctx context.Context, db *gorm.DB, fragment string) (*entity.Patient, error) {
	return m.patient(m.Called(ctx, db, fragment))
}

func (m *PatientRepoMock) FindFirstByName(ctx context.Context, db *gorm.DB, fragment string) (*entity.Patient, error) {
	return m.patient(m.Called(ctx, db, fragment))
}

func (m *PatientRepoMock) ExistsByPhone(ctx context.Context, db *gorm.DB, phone string, excludeID int64) (bool, error) {
	args := m.Called(ctx, db, phone, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *PatientRepoMock) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) (int64, error) {
	args := m.Called(ctx, db, patient)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PatientRepoMock) UpdateImage(ctx context.Context, db *gorm.DB, id int64, imageURL string) (int64, error) {
	args := m.Called(ctx, db, id, imageURL)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PatientRepoMock) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PatientRepoMock) patient(args mock.Arguments) (*entity.Patient, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Patient), args.Error(1)
}

type PolicyRepoMock struct{ mock.Mock }

func (m *PolicyRepoMock) Create(ctx context.Context, db *gorm.DB, policy *entity.Policy) error {
	return m.Called(ctx, db, policy).Error(0)
}

func (m *PolicyRepoMock) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Policy, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Policy), args.Error(1)
}

func (m *PolicyRepoMock) FindByID(ctx context.Context, db *gorm.DB, id int64) (*entity.Policy, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Policy), args.Error(1)
}

func (m *PolicyRepoMock) FindByPatientID(ctx context.Context, db *gorm.DB, patientID int64) ([]entity.Policy, error) {
	args := m.Called(ctx, db, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Policy), args.Error(1)
}

func (m *PolicyRepoMock) ExistsByPolicyNumber(ctx context.Context, db *gorm.DB, policyNumber string) (bool, error) {
	args := m.Called(ctx, db, policyNumber)
	return args.Bool(0), args.Error(1)
}

func (m *PolicyRepoMock) Cancel(ctx context.Context, db *gorm.DB, id int64, reason string) (int64, error) {
	args := m.Called(ctx, db, id, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PolicyRepoMock) Renew(ctx context.Context, db *gorm.DB, id int64, endDate time.Time) (int64, error) {
	args := m.Called(ctx, db, id, endDate)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PolicyRepoMock) ExpireEnded(ctx context.Context, db *gorm.DB, today time.Time) ([]entity.Policy, error) {
	args := m.Called(ctx, db, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Policy), args.Error(1)
}

func (m *PolicyRepoMock) Stats(ctx context.Context, db *gorm.DB, expiringCutoff time.Time) (*entity.DashboardStats, error) {
	args := m.Called(ctx, db, expiringCutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DashboardStats), args.Error(1)
}

type AuditServiceMock struct{ mock.Mock }

func (m *AuditServiceMock) LogCreate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, newValue interface{}) error {
	return m.Called(ctx, tx, action, entityName, entityID, newValue).Error(0)
}

func (m *AuditServiceMock) LogUpdate(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return m.Called(ctx, tx, action, entityName, entityID, oldValue, newValue).Error(0)
}

func (m *AuditServiceMock) LogDelete(ctx context.Context, tx *gorm.DB, action string, entityName string, entityID string, oldValue interface{}) error {
	return m.Called(ctx, tx, action, entityName, entityID, oldValue).Error(0)
}

// DashboardMock calls the loader straight through and counts invalidations.
type DashboardMock struct {
	invalidations int
}

func (m *DashboardMock) Stats(ctx context.Context, load service.StatsLoader) (*entity.DashboardStats, error) {
	return load(ctx)
}

func (m *DashboardMock) Invalidate(ctx context.Context) {
	m.invalidations++
}
