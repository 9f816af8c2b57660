package action

import (
	"fmt"
	"regexp"
	"time"
)

// ValidateForm checks submitted values against the form's field specs and
// returns per-field error messages. Validation is local and synchronous;
// a failure blocks only the submission of the offending form, never the
// session.
func ValidateForm(fields []FieldSpec, values map[string]any) map[string]string {
	errs := make(map[string]string)
	for _, field := range fields {
		if msg := validateField(field, values[field.Name]); msg != "" {
			errs[field.Name] = msg
		}
	}
	return errs
}

func validateField(field FieldSpec, value any) string {
	empty := value == nil || value == ""
	if field.Required && empty {
		return fmt.Sprintf("%s is required", field.Label)
	}
	if empty {
		return ""
	}

	rule := field.Validation
	if rule == nil {
		return ""
	}

	str, isString := value.(string)

	if rule.Pattern != "" && isString {
		re, err := regexp.Compile(rule.Pattern)
		if err == nil && !re.MatchString(str) {
			if rule.CustomMessage != "" {
				return rule.CustomMessage
			}
			return fmt.Sprintf("%s format is invalid", field.Label)
		}
	}

	if isString {
		if rule.MinLength != nil && len(str) < *rule.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", field.Label, *rule.MinLength)
		}
		if rule.MaxLength != nil && len(str) > *rule.MaxLength {
			return fmt.Sprintf("%s must not exceed %d characters", field.Label, *rule.MaxLength)
		}
	}

	if field.Type == "number" {
		if num, ok := toFloat(value); ok {
			if rule.MinValue != nil && num < *rule.MinValue {
				return fmt.Sprintf("%s must be at least %v", field.Label, *rule.MinValue)
			}
			if rule.MaxValue != nil && num > *rule.MaxValue {
				return fmt.Sprintf("%s must not exceed %v", field.Label, *rule.MaxValue)
			}
		}
	}

	if field.Type == "date" && rule.MinAge != nil && isString {
		age, ok := ageFromDate(str, time.Now())
		if ok {
			if age < *rule.MinAge {
				return fmt.Sprintf("You must be at least %d years old", *rule.MinAge)
			}
			if rule.MaxAge != nil && age > *rule.MaxAge {
				return fmt.Sprintf("Age must not exceed %d years", *rule.MaxAge)
			}
		}
	}

	return ""
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// ageFromDate computes completed years between a yyyy-mm-dd birth date and
// the reference time.
func ageFromDate(date string, now time.Time) (int, bool) {
	birth, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age, true
}
