package action

import (
	"fmt"
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestValidateForm(t *testing.T) {
	fields := []FieldSpec{
		{Name: "fullName", Label: "Full Name", Type: "text", Required: true,
			Validation: &ValidationRule{MinLength: intPtr(3), MaxLength: intPtr(50)}},
		{Name: "mobileNumber", Label: "Mobile Number", Type: "phone", Required: true,
			Validation: &ValidationRule{Pattern: `^[6-9][0-9]{9}$`, CustomMessage: "Enter a valid 10-digit mobile number"}},
		{Name: "pinCode", Label: "PIN Code", Type: "text",
			Validation: &ValidationRule{Pattern: `^[1-9][0-9]{5}$`}},
		{Name: "annualIncome", Label: "Annual Income", Type: "number",
			Validation: &ValidationRule{MinValue: floatPtr(100000), MaxValue: floatPtr(100000000)}},
	}

	tests := []struct {
		name   string
		values map[string]any
		want   map[string]string
	}{
		{
			"all valid",
			map[string]any{
				"fullName":     "Asha Rao",
				"mobileNumber": "9876543210",
				"pinCode":      "560001",
				"annualIncome": 1200000.0,
			},
			map[string]string{},
		},
		{
			"missing required",
			map[string]any{"pinCode": "560001"},
			map[string]string{
				"fullName":     "Full Name is required",
				"mobileNumber": "Mobile Number is required",
			},
		},
		{
			"custom pattern message",
			map[string]any{"fullName": "Asha Rao", "mobileNumber": "12345"},
			map[string]string{
				"mobileNumber": "Enter a valid 10-digit mobile number",
			},
		},
		{
			"default pattern message",
			map[string]any{"fullName": "Asha Rao", "mobileNumber": "9876543210", "pinCode": "0001"},
			map[string]string{
				"pinCode": "PIN Code format is invalid",
			},
		},
		{
			"too short",
			map[string]any{"fullName": "Al", "mobileNumber": "9876543210"},
			map[string]string{
				"fullName": "Full Name must be at least 3 characters",
			},
		},
		{
			"number below minimum",
			map[string]any{"fullName": "Asha Rao", "mobileNumber": "9876543210", "annualIncome": 50000.0},
			map[string]string{
				"annualIncome": "Annual Income must be at least 100000",
			},
		},
		{
			"optional empty fields pass",
			map[string]any{"fullName": "Asha Rao", "mobileNumber": "9876543210", "pinCode": "", "annualIncome": nil},
			map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateForm(fields, tt.values)
			if len(got) != len(tt.want) {
				t.Fatalf("errors = %v, want %v", got, tt.want)
			}
			for name, msg := range tt.want {
				if got[name] != msg {
					t.Errorf("errs[%q] = %q, want %q", name, got[name], msg)
				}
			}
		})
	}
}

func TestValidateField_AgeRules(t *testing.T) {
	year := time.Now().Year()
	field := FieldSpec{
		Name: "dateOfBirth", Label: "Date of Birth", Type: "date", Required: true,
		Validation: &ValidationRule{MinAge: intPtr(18), MaxAge: intPtr(65)},
	}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"adult passes", fmt.Sprintf("%d-01-01", year-30), ""},
		{"minor rejected", fmt.Sprintf("%d-01-01", year-10), "You must be at least 18 years old"},
		{"too old rejected", fmt.Sprintf("%d-01-01", year-80), "Age must not exceed 65 years"},
		{"garbage date ignored", "not-a-date", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateField(field, tt.value); got != tt.want {
				t.Errorf("validateField() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAgeFromDate(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want int
	}{
		{"1990-06-15", 36}, // birthday today
		{"1990-06-16", 35}, // birthday tomorrow
		{"1990-06-14", 36}, // birthday yesterday
		{"2008-12-01", 17},
	}
	for _, tt := range tests {
		got, ok := ageFromDate(tt.date, now)
		if !ok {
			t.Fatalf("ageFromDate(%q) not ok", tt.date)
		}
		if got != tt.want {
			t.Errorf("ageFromDate(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}

	if _, ok := ageFromDate("junk", now); ok {
		t.Error("expected not ok for unparseable date")
	}
}
