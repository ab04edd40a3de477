package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthsure/internal/converter"
	"healthsure/internal/delivery/dto"
	"healthsure/internal/onboarding"
	"healthsure/internal/service"
	"healthsure/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound = service.ErrSessionNotFound
	ErrInvalidStep     = errors.New("action not allowed at the current onboarding step")
)

// StepValidationError carries the per-field messages of a rejected step.
type StepValidationError struct {
	Step   onboarding.Step
	Fields onboarding.Errors
}

func (e *StepValidationError) Error() string {
	return fmt.Sprintf("onboarding step %d is invalid: %s", e.Step, strings.Join(e.Fields.Fields(), ", "))
}

type OnboardingUsecase interface {
	Start(ctx context.Context) (*dto.OnboardingSessionResponse, error)
	Get(ctx context.Context, id string) (*dto.OnboardingSessionResponse, error)
	Next(ctx context.Context, id string, values map[string]string) (*dto.OnboardingSessionResponse, error)
	Back(ctx context.Context, id string) (*dto.OnboardingSessionResponse, error)
	Submit(ctx context.Context, id string) (*dto.PatientCreatedResponse, error)
	Abandon(ctx context.Context, id string) error
}

type onboardingUsecase struct {
	log      *logrus.Logger
	validate *validator.CustomValidator
	sessions service.SessionStore
	patients PatientUsecase
	now      func() time.Time
}

func NewOnboardingUsecase(log *logrus.Logger, validate *validator.CustomValidator, sessions service.SessionStore, patients PatientUsecase) OnboardingUsecase {
	return &onboardingUsecase{
		log:      log,
		validate: validate,
		sessions: sessions,
		patients: patients,
		now:      time.Now,
	}
}

// requestFields maps patient request fields back to the wizard field that
// produced them.
var requestFields = map[string]string{
	"first_name": onboarding.FieldFirstName,
	"last_name":  onboarding.FieldLastName,
	"age":        onboarding.FieldDOB,
	"city":       onboarding.FieldCity,
	"phone":      onboarding.FieldPhone,
	"email":      onboarding.FieldEmail,
}

func (u *onboardingUsecase) Start(ctx context.Context) (*dto.OnboardingSessionResponse, error) {
	session := onboarding.NewSession(uuid.NewString(), u.now())
	if err := u.sessions.Save(ctx, session); err != nil {
		u.log.Warnf("Failed to save onboarding session: %+v", err)
		return nil, err
	}
	return u.toResponse(session), nil
}

func (u *onboardingUsecase) Get(ctx context.Context, id string) (*dto.OnboardingSessionResponse, error) {
	session, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.toResponse(session), nil
}

// Next validates values against the current step and advances on success.
// A rejected step returns *StepValidationError and leaves the session as is.
func (u *onboardingUsecase) Next(ctx context.Context, id string, values map[string]string) (*dto.OnboardingSessionResponse, error) {
	session, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fieldErrs, err := session.Next(trimValues(values), u.now())
	if errors.Is(err, onboarding.ErrAtConfirmStep) {
		return nil, ErrInvalidStep
	}
	if err != nil {
		return nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, &StepValidationError{Step: session.Step, Fields: fieldErrs}
	}

	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return u.toResponse(session), nil
}

func (u *onboardingUsecase) Back(ctx context.Context, id string) (*dto.OnboardingSessionResponse, error) {
	session, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Back(u.now())
	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return u.toResponse(session), nil
}

// Submit creates the patient from a session at the confirmation step and
// discards the session. The request is checked with the same rules as a
// direct create; a failure returns *StepValidationError and keeps the session.
func (u *onboardingUsecase) Submit(ctx context.Context, id string) (*dto.PatientCreatedResponse, error) {
	session, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.Ready() {
		return nil, ErrInvalidStep
	}

	age, err := session.Age(u.now())
	if err != nil {
		return nil, err
	}

	req := &dto.CreatePatientRequest{
		FirstName: session.Data.FirstName,
		LastName:  session.Data.LastName,
		Age:       age,
		City:      session.Data.City,
		Phone:     session.Data.Phone,
		Email:     session.Data.Email,
	}
	if err := u.validate.Validate(req); err != nil {
		fields := onboarding.Errors{}
		for field, msg := range u.validate.FormatValidationErrors(err) {
			if name, ok := requestFields[field]; ok {
				field = name
			}
			fields[field] = append(fields[field], msg)
		}
		return nil, &StepValidationError{Step: session.Step, Fields: fields}
	}

	created, err := u.patients.Create(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	if err := u.sessions.Delete(ctx, id); err != nil {
		u.log.Warnf("Failed to delete onboarding session %s: %+v", id, err)
	}

	return created, nil
}

func (u *onboardingUsecase) Abandon(ctx context.Context, id string) error {
	if _, err := u.load(ctx, id); err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, id); err != nil {
		u.log.Warnf("Failed to delete onboarding session %s: %+v", id, err)
		return err
	}
	return nil
}

func (u *onboardingUsecase) load(ctx context.Context, id string) (*onboarding.Session, error) {
	session, err := u.sessions.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			u.log.Warnf("Failed to load onboarding session %s: %+v", id, err)
		}
		return nil, err
	}
	return session, nil
}

func (u *onboardingUsecase) save(ctx context.Context, session *onboarding.Session) error {
	if err := u.sessions.Save(ctx, session); err != nil {
		u.log.Warnf("Failed to save onboarding session %s: %+v", session.ID, err)
		return err
	}
	return nil
}

func (u *onboardingUsecase) toResponse(session *onboarding.Session) *dto.OnboardingSessionResponse {
	var summary *onboarding.Summary
	if session.Ready() {
		s, err := session.Summary(u.now())
		if err != nil {
			u.log.Warnf("Failed to build onboarding summary for %s: %+v", session.ID, err)
		}
		summary = s
	}
	return converter.SessionToResponse(session, summary)
}

func trimValues(values map[string]string) map[string]string {
	trimmed := make(map[string]string, len(values))
	for k, v := range values {
		trimmed[k] = strings.TrimSpace(v)
	}
	return trimmed
}
