package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"healthsure/internal/converter"
	"healthsure/internal/delivery/dto"
	"healthsure/internal/domain/entity"
	"healthsure/internal/domain/repository"
	"healthsure/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrPolicyNotFound       = errors.New("policy not found")
	ErrPolicyHolderNotFound = errors.New("patient not found")
	ErrPolicyNumberExists   = errors.New("policy number already exists")
	ErrPolicyNotCancellable = errors.New("policy not found or already cancelled/expired")
	ErrPolicyNotRenewable   = errors.New("policy not found or already cancelled")
	ErrInvalidDate          = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDateRange     = errors.New("end date must not be before start date")
	ErrInvalidSumInsured    = errors.New("sum insured must be greater than zero")
	ErrCancelReasonRequired = errors.New("cancel reason is required")
)

type PolicyUsecase interface {
	GetAll(ctx context.Context) ([]dto.PolicyResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.PolicyResponse, error)
	Create(ctx context.Context, req *dto.CreatePolicyRequest) (*dto.PolicyCreatedResponse, error)
	Cancel(ctx context.Context, id int64, req *dto.CancelPolicyRequest) (*dto.PolicyStatusResponse, error)
	Renew(ctx context.Context, id int64, req *dto.RenewPolicyRequest) (*dto.PolicyStatusResponse, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
	ExpireEnded(ctx context.Context) (int, error)
}

type policyUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	policyRepo   repository.PolicyRepository
	patientRepo  repository.PatientRepository
	auditService service.AuditService
	dashboard    service.DashboardCache
	now          func() time.Time
}

func NewPolicyUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	policyRepo repository.PolicyRepository,
	patientRepo repository.PatientRepository,
	auditService service.AuditService,
	dashboard service.DashboardCache,
) PolicyUsecase {
	return &policyUsecase{
		db:           db,
		log:          log,
		policyRepo:   policyRepo,
		patientRepo:  patientRepo,
		auditService: auditService,
		dashboard:    dashboard,
		now:          time.Now,
	}
}

func (u *policyUsecase) GetAll(ctx context.Context) ([]dto.PolicyResponse, error) {
	policies, err := u.policyRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find all policies: %+v", err)
		return nil, err
	}

	return converter.PoliciesToResponses(policies), nil
}

func (u *policyUsecase) GetByID(ctx context.Context, id int64) (*dto.PolicyResponse, error) {
	policy, err := u.findPolicy(ctx, id)
	if err != nil {
		return nil, err
	}

	return converter.PolicyToResponse(policy), nil
}

// Create adds an ACTIVE policy for an existing patient.
func (u *policyUsecase) Create(ctx context.Context, req *dto.CreatePolicyRequest) (*dto.PolicyCreatedResponse, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}
	if !req.SumInsured.IsPositive() {
		return nil, ErrInvalidSumInsured
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPolicyHolderNotFound
	}

	policyNumber := strings.TrimSpace(req.PolicyNumber)
	exists, err := u.policyRepo.ExistsByPolicyNumber(ctx, u.db, policyNumber)
	if err != nil {
		u.log.Warnf("Failed to check policy number %s: %+v", policyNumber, err)
		return nil, err
	}
	if exists {
		return nil, ErrPolicyNumberExists
	}

	policy := &entity.Policy{
		PatientID:    req.PatientID,
		PolicyNumber: policyNumber,
		PlanName:     strings.TrimSpace(req.PlanName),
		SumInsured:   req.SumInsured,
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       entity.PolicyStatusActive,
	}

	if err := u.policyRepo.Create(ctx, u.db, policy); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrPolicyNumberExists
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return nil, ErrPolicyHolderNotFound
		}
		u.log.Warnf("Failed to create policy: %+v", err)
		return nil, err
	}

	service.RecordPolicyTransition(string(entity.PolicyStatusActive), 1)
	u.dashboard.Invalidate(ctx)
	u.auditService.LogCreate(ctx, u.db, entity.AuditActionPolicyCreate, entity.AuditEntityPolicy,
		strconv.FormatInt(policy.ID, 10), converter.PolicyToResponse(policy))

	return &dto.PolicyCreatedResponse{ID: policy.ID, PolicyNumber: policy.PolicyNumber}, nil
}

// Cancel moves an ACTIVE policy to CANCELLED. Any other status is rejected.
func (u *policyUsecase) Cancel(ctx context.Context, id int64, req *dto.CancelPolicyRequest) (*dto.PolicyStatusResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrCancelReasonRequired
	}

	policy, err := u.findPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanCancel() {
		return nil, ErrPolicyNotCancellable
	}

	rows, err := u.policyRepo.Cancel(ctx, u.db, id, reason)
	if err != nil {
		u.log.Warnf("Failed to cancel policy %d: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrPolicyNotCancellable
	}

	service.RecordPolicyTransition(string(entity.PolicyStatusCancelled), 1)
	u.dashboard.Invalidate(ctx)
	u.auditService.LogUpdate(ctx, u.db, entity.AuditActionPolicyCancel, entity.AuditEntityPolicy,
		strconv.FormatInt(id, 10),
		map[string]interface{}{"status": policy.Status},
		map[string]interface{}{"status": entity.PolicyStatusCancelled, "cancel_reason": reason})

	return &dto.PolicyStatusResponse{ID: id, Status: string(entity.PolicyStatusCancelled)}, nil
}

// Renew re-activates an ACTIVE or EXPIRED policy with a new end date and
// clears any cancel reason. CANCELLED policies cannot be renewed.
func (u *policyUsecase) Renew(ctx context.Context, id int64, req *dto.RenewPolicyRequest) (*dto.PolicyStatusResponse, error) {
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	policy, err := u.findPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanRenew() {
		return nil, ErrPolicyNotRenewable
	}
	if endDate.Before(policy.StartDate) {
		return nil, ErrInvalidDateRange
	}

	rows, err := u.policyRepo.Renew(ctx, u.db, id, endDate)
	if err != nil {
		u.log.Warnf("Failed to renew policy %d: %+v", id, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrPolicyNotRenewable
	}

	service.RecordPolicyTransition(string(entity.PolicyStatusActive), 1)
	u.dashboard.Invalidate(ctx)
	u.auditService.LogUpdate(ctx, u.db, entity.AuditActionPolicyRenew, entity.AuditEntityPolicy,
		strconv.FormatInt(id, 10),
		map[string]interface{}{"status": policy.Status, "end_date": policy.EndDate.Format(converter.DateLayout)},
		map[string]interface{}{"status": entity.PolicyStatusActive, "end_date": req.EndDate})

	return &dto.PolicyStatusResponse{
		ID:      id,
		Status:  string(entity.PolicyStatusActive),
		EndDate: endDate.Format(converter.DateLayout),
	}, nil
}

// Dashboard returns policy counts by status plus the ACTIVE policies ending
// within the expiring-soon window.
func (u *policyUsecase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	cutoff := u.today().Add(entity.ExpiringSoonWindow)

	stats, err := u.dashboard.Stats(ctx, func(ctx context.Context) (*entity.DashboardStats, error) {
		return u.policyRepo.Stats(ctx, u.db, cutoff)
	})
	if err != nil {
		u.log.Warnf("Failed to load dashboard stats: %+v", err)
		return nil, err
	}

	return converter.DashboardStatsToResponse(stats), nil
}

// ExpireEnded marks ACTIVE policies whose end date is before today as
// EXPIRED and returns how many changed.
func (u *policyUsecase) ExpireEnded(ctx context.Context) (int, error) {
	expired, err := u.policyRepo.ExpireEnded(ctx, u.db, u.today())
	if err != nil {
		u.log.Warnf("Failed to expire ended policies: %+v", err)
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	for _, p := range expired {
		u.auditService.LogUpdate(ctx, u.db, entity.AuditActionPolicyExpire, entity.AuditEntityPolicy,
			strconv.FormatInt(p.ID, 10),
			map[string]interface{}{"status": entity.PolicyStatusActive},
			map[string]interface{}{"status": entity.PolicyStatusExpired, "end_date": p.EndDate.Format(converter.DateLayout)})
	}

	service.RecordPolicyTransition(string(entity.PolicyStatusExpired), len(expired))
	u.dashboard.Invalidate(ctx)

	return len(expired), nil
}

func (u *policyUsecase) findPolicy(ctx context.Context, id int64) (*entity.Policy, error) {
	policy, err := u.policyRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find policy %d: %+v", id, err)
		return nil, err
	}
	if policy == nil {
		return nil, ErrPolicyNotFound
	}
	return policy, nil
}

// today is the current UTC calendar date at midnight.
func (u *policyUsecase) today() time.Time {
	return u.now().UTC().Truncate(24 * time.Hour)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(converter.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
