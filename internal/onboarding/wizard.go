package onboarding

import (
	"errors"
	"fmt"
	"time"

	"healthsure/pkg/validator"
)

// Step is a position in the wizard.
type Step int

const (
	StepIdentity Step = 1 // name, date of birth, contact details
	StepDetails  Step = 2 // city and medical information
	StepConfirm  Step = 3 // review and submit
)

func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "identity"
	case StepDetails:
		return "details"
	case StepConfirm:
		return "confirm"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrAtConfirmStep = errors.New("wizard is at the confirmation step, submit instead")
	ErrNotConfirmed  = errors.New("wizard must reach the confirmation step before submitting")
)

// Field names as sent by the onboarding form.
const (
	FieldFirstName         = "firstName"
	FieldLastName          = "lastName"
	FieldDOB               = "dob"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldAddress           = "address"
	FieldCity              = "city"
	FieldMedicalConditions = "medicalConditions"
)

// MaxAge bounds the age derived from the date of birth.
const MaxAge = 150

// StepRules returns the rules gating the transition out of step on now.
func StepRules(step Step, now time.Time) Rules {
	switch step {
	case StepIdentity:
		return Rules{
			FieldFirstName: {Required("First name"), MinLength(2, "First name"), MaxLength(100, "First name")},
			FieldLastName:  {Required("Last name"), MinLength(2, "Last name"), MaxLength(100, "Last name")},
			FieldDOB:       {Required("Date of birth"), DateFormat("Date of birth"), ValidDate("Date of birth"), BirthDate("Date of birth", MaxAge, now)},
			FieldEmail:     {Required("Email"), ValidEmail(), MaxLength(255, "Email")},
			FieldPhone:     {Required("Phone"), ValidPhone()},
			FieldAddress:   {Required("Address")},
		}
	case StepDetails:
		return Rules{
			FieldCity: {Required("City"), MinLength(2, "City"), MaxLength(100, "City")},
		}
	}
	return Rules{}
}

// Data is everything the wizard has collected so far.
type Data struct {
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	DOB               string `json:"dob,omitempty"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	City              string `json:"city,omitempty"`
	MedicalConditions string `json:"medicalConditions,omitempty"`
}

// Session is one run through the wizard. It is plain data so it can be
// stored between requests.
type Session struct {
	ID        string    `json:"id"`
	Step      Step      `json:"step"`
	Data      Data      `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Step:      StepIdentity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Next validates values against the current step's rules. When they pass
// the values are saved and the session advances; otherwise the session is
// left untouched and the field errors are returned.
func (s *Session) Next(values map[string]string, now time.Time) (Errors, error) {
	if s.Step >= StepConfirm {
		return nil, ErrAtConfirmStep
	}

	errs := ValidateForm(values, StepRules(s.Step, now))
	if len(errs) > 0 {
		return errs, nil
	}

	switch s.Step {
	case StepIdentity:
		s.Data.FirstName = values[FieldFirstName]
		s.Data.LastName = values[FieldLastName]
		s.Data.DOB = values[FieldDOB]
		s.Data.Email = values[FieldEmail]
		s.Data.Phone = values[FieldPhone]
		s.Data.Address = values[FieldAddress]
	case StepDetails:
		s.Data.City = values[FieldCity]
		s.Data.MedicalConditions = values[FieldMedicalConditions]
	}

	s.Step++
	s.UpdatedAt = now
	return nil, nil
}

// Back returns to the previous step. It never goes below the first step and
// keeps the data already collected.
func (s *Session) Back(now time.Time) {
	if s.Step > StepIdentity {
		s.Step--
		s.UpdatedAt = now
	}
}

// Ready reports whether the session may be submitted.
func (s *Session) Ready() bool {
	return s.Step == StepConfirm
}

// Summary is what the confirmation step shows before submitting.
type Summary struct {
	Name              string `json:"name"`
	Age               int    `json:"age"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	City              string `json:"city"`
	MedicalConditions string `json:"medical_conditions,omitempty"`
}

func (s *Session) Summary(now time.Time) (*Summary, error) {
	if !s.Ready() {
		return nil, ErrNotConfirmed
	}
	age, err := s.Age(now)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Name:              s.Data.FirstName + " " + s.Data.LastName,
		Age:               age,
		Email:             s.Data.Email,
		Phone:             s.Data.Phone,
		Address:           s.Data.Address,
		City:              s.Data.City,
		MedicalConditions: s.Data.MedicalConditions,
	}, nil
}

// Age is the patient's age in whole years on now.
func (s *Session) Age(now time.Time) (int, error) {
	dob, err := time.Parse(validator.DateLayout, s.Data.DOB)
	if err != nil {
		return 0, fmt.Errorf("parse date of birth: %w", err)
	}
	return AgeOn(dob, now), nil
}

// AgeOn counts completed years between dob and now, never less than zero.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
