package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar date format accepted from clients.
const DateLayout = "2006-01-02"

var (
	vars          = validator.New()
	phoneStripper = strings.NewReplacer(" ", "", "\t", "", "(", "", ")", "", "-", "")
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizePhone strips the separators users commonly type in phone numbers.
func NormalizePhone(value string) string {
	return phoneStripper.Replace(value)
}

// IsValidPhone reports whether value is a 10-digit number once separators
// are removed.
func IsValidPhone(value string) bool {
	return vars.Var(NormalizePhone(value), "len=10,number") == nil
}

// IsValidEmail reports whether value looks like an email address.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(value) && vars.Var(value, "email") == nil
}

// IsValidDate reports whether value is a real calendar date in DateLayout.
func IsValidDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}
