package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	Age       int    `json:"age" validate:"gte=0,lte=150"`
	Phone     string `json:"phone" validate:"required,phone"`
	Email     string `json:"email" validate:"required,email"`
	EndDate   string `json:"end_date" validate:"omitempty,date"`
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()
	err := v.Validate(sample{FirstName: "Jane", Age: 30, Phone: "(555) 123-4567", Email: "jane@example.com", EndDate: "2027-01-31"})
	assert.NoError(t, err)
}

func TestValidate_FormatsByJSONName(t *testing.T) {
	v := NewValidator()
	err := v.Validate(sample{FirstName: "J", Age: 200, Phone: "123", Email: "bad", EndDate: "31/01/2027"})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, map[string]string{
		"first_name": "first_name must be at least 2 characters",
		"age":        "age must be less than or equal to 150",
		"phone":      "phone must be a valid 10-digit phone number",
		"email":      "email must be a valid email address",
		"end_date":   "end_date must be a date in YYYY-MM-DD format",
	}, errs)
}

func TestValidate_Required(t *testing.T) {
	v := NewValidator()
	errs := v.FormatValidationErrors(v.Validate(sample{}))
	assert.Equal(t, "first_name is required", errs["first_name"])
	assert.Equal(t, "phone is required", errs["phone"])
}

func TestFormatValidationErrors_OtherError(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.FormatValidationErrors(errors.New("boom")))
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"5551234567", "555-123-4567", "(555) 123 4567"}
	for _, v := range valid {
		assert.True(t, IsValidPhone(v), v)
	}

	invalid := []string{"", "555123456", "55512345678", "555-abc-4567", "+555123456"}
	for _, v := range invalid {
		assert.False(t, IsValidPhone(v), v)
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("jane@example.com"))
	assert.False(t, IsValidEmail("jane@example"))
	assert.False(t, IsValidEmail("jane example@x.com"))
	assert.False(t, IsValidEmail(""))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("1990-02-28"))
	assert.False(t, IsValidDate("1990-02-30"))
	assert.False(t, IsValidDate("28/02/1990"))
	assert.Equal(t, "5551234567", NormalizePhone("(555) 123-4567"))
}
