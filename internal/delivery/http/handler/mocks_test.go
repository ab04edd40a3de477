package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"healthsure/internal/delivery/dto"
	"healthsure/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

type PatientUsecaseMock struct{ mock.Mock }

func (m *PatientUsecaseMock) GetAll(ctx context.Context) ([]dto.PatientResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PatientResponse), args.Error(1)
}

func (m *PatientUsecaseMock) GetByID(ctx context.Context, id int64) (*dto.PatientDetailResponse, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *PatientUsecaseMock) FindByPhone(ctx context.Context, phone string) (*dto.PatientDetailResponse, error) {
	return m.detail(m.Called(ctx, phone))
}

func (m *PatientUsecaseMock) FindByEmail(ctx context.Context, email string) (*dto.PatientDetailResponse, error) {
	return m.detail(m.Called(ctx, email))
}

func (m *PatientUsecaseMock) FindByName(ctx context.Context, name string) (*dto.PatientDetailResponse, error) {
	return m.detail(m.Called(ctx, name))
}

func (m *PatientUsecaseMock) GetPolicies(ctx context.Context, id int64) ([]dto.PolicyResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PolicyResponse), args.Error(1)
}

func (m *PatientUsecaseMock) Create(ctx context.Context, req *dto.CreatePatientRequest, image io.Reader) (*dto.PatientCreatedResponse, error) {
	args := m.Called(ctx, req, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PatientCreatedResponse), args.Error(1)
}

func (m *PatientUsecaseMock) Update(ctx context.Context, id int64, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PatientResponse), args.Error(1)
}

func (m *PatientUsecaseMock) UpdateImage(ctx context.Context, id int64, image io.Reader) (*dto.PatientImageResponse, error) {
	args := m.Called(ctx, id, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PatientImageResponse), args.Error(1)
}

func (m *PatientUsecaseMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientUsecaseMock) detail(args mock.Arguments) (*dto.PatientDetailResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PatientDetailResponse), args.Error(1)
}

type PolicyUsecaseMock struct{ mock.Mock }

func (m *PolicyUsecaseMock) GetAll(ctx context.Context) ([]dto.PolicyResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.PolicyResponse), args.Error(1)
}

func (m *PolicyUsecaseMock) GetByID(ctx context.Context, id int64) (*dto.PolicyResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PolicyResponse), args.Error(1)
}

func (m *PolicyUsecaseMock) Create(ctx context.Context, req *dto.CreatePolicyRequest) (*dto.PolicyCreatedResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PolicyCreatedResponse), args.Error(1)
}

func (m *PolicyUsecaseMock) Cancel(ctx context.Context, id int64, req *dto.CancelPolicyRequest) (*dto.PolicyStatusResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PolicyStatusResponse), args.Error(1)
}

func (m *PolicyUsecaseMock) Renew(ctx context.Context, id int64, req *dto.RenewPolicyRequest) (*dto.PolicyStatusResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PolicyStatusResponse), args.Error(1)
}

func (m *PolicyUsecaseMock) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DashboardResponse), args.Error(1)
}

func (m *PolicyUsecaseMock) ExpireEnded(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type OnboardingUsecaseMock struct{ mock.Mock }

func (m *OnboardingUsecaseMock) session(args mock.Arguments) (*dto.OnboardingSessionResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.OnboardingSessionResponse), args.Error(1)
}

func (m *OnboardingUsecaseMock) Start(ctx context.Context) (*dto.OnboardingSessionResponse, error) {
	return m.session(m.Called(ctx))
}

func (m *OnboardingUsecaseMock) Get(ctx context.Context, id string) (*dto.OnboardingSessionResponse, error) {
	return m.session(m.Called(ctx, id))
}

func (m *OnboardingUsecaseMock) Next(ctx context.Context, id string, values map[string]string) (*dto.OnboardingSessionResponse, error) {
	return m.session(m.Called(ctx, id, values))
}

func (m *OnboardingUsecaseMock) Back(ctx context.Context, id string) (*dto.OnboardingSessionResponse, error) {
	return m.session(m.Called(ctx, id))
}

func (m *OnboardingUsecaseMock) Submit(ctx context.Context, id string) (*dto.PatientCreatedResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PatientCreatedResponse), args.Error(1)
}

func (m *OnboardingUsecaseMock) Abandon(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var (
	_ usecase.PatientUsecase    = (*PatientUsecaseMock)(nil)
	_ usecase.PolicyUsecase     = (*PolicyUsecaseMock)(nil)
	_ usecase.OnboardingUsecase = (*OnboardingUsecaseMock)(nil)
)
