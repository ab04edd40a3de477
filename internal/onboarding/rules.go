// Package onboarding implements the patient onboarding wizard: a three step
// linear state machine whose transitions are gated by per-field validation
// rules.
package onboarding

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"healthsure/pkg/validator"
)

// Rule checks one field value and returns an error message, or "" when the
// value passes.
type Rule func(value string) string

// Rules maps a field name to the rules applied to it, in order.
type Rules map[string][]Rule

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// First returns the first message recorded for field.
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func Required(fieldName string) Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return fieldName + " is required"
		}
		return ""
	}
}

func MinLength(length int, fieldName string) Rule {
	return func(value string) string {
		if value != "" && utf8.RuneCountInString(value) < length {
			return fmt.Sprintf("%s must be at least %d characters", fieldName, length)
		}
		return ""
	}
}

func MaxLength(length int, fieldName string) Rule {
	return func(value string) string {
		if value != "" && utf8.RuneCountInString(value) > length {
			return fmt.Sprintf("%s must not exceed %d characters", fieldName, length)
		}
		return ""
	}
}

func ValidEmail() Rule {
	return func(value string) string {
		if value != "" && !validator.IsValidEmail(value) {
			return "Please enter a valid email address"
		}
		return ""
	}
}

func ValidPhone() Rule {
	return func(value string) string {
		if value != "" && !validator.IsValidPhone(value) {
			return "Please enter a valid 10-digit phone number"
		}
		return ""
	}
}

func Pattern(re *regexp.Regexp, message string) Rule {
	return func(value string) string {
		if value != "" && !re.MatchString(value) {
			return message
		}
		return ""
	}
}

// ValidateForm runs each field's rules in order and keeps only the first
// failure per field. An empty result means the form is valid.
func ValidateForm(values map[string]string, rules Rules) Errors {
	errs := Errors{}
	for field, fieldRules := range rules {
		value := values[field]
		for _, rule := range fieldRules {
			if msg := rule(value); msg != "" {
				errs[field] = append(errs[field], msg)
				break
			}
		}
	}
	return errs
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateFormat requires value to look like YYYY-MM-DD.
func DateFormat(fieldName string) Rule {
	return Pattern(datePattern, fieldName+" must be a date in YYYY-MM-DD format")
}

// ValidDate requires value to be a real calendar date.
func ValidDate(fieldName string) Rule {
	return func(value string) string {
		if value == "" {
			return ""
		}
		if !validator.IsValidDate(value) {
			return fieldName + " is not a valid date"
		}
		return ""
	}
}

// BirthDate requires a date of birth that is not after now and gives an age
// of at most maxAge. Malformed values are left to ValidDate.
func BirthDate(fieldName string, maxAge int, now time.Time) Rule {
	return func(value string) string {
		dob, err := time.Parse(validator.DateLayout, value)
		if err != nil {
			return ""
		}
		if dob.After(now) {
			return fieldName + " cannot be in the future"
		}
		if AgeOn(dob, now) > maxAge {
			return fmt.Sprintf("%s must give an age of at most %d years", fieldName, maxAge)
		}
		return ""
	}
}
