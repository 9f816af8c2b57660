package domain

import "math"

// CompletionThreshold is the percentage at which the personal-details and
// quote-details sections count as completed.
const CompletionThreshold = 80

// PersonalDetails holds the customer identity fields collected by the
// onboarding form. All fields are optional until the form is filled in.
type PersonalDetails struct {
	FullName     string `json:"fullName,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	Age          string `json:"age,omitempty"`
	Gender       string `json:"gender,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Email        string `json:"email,omitempty"`
	PinCode      string `json:"pinCode,omitempty"`
	AnnualIncome string `json:"annualIncome,omitempty"`
	TobaccoUser  *bool  `json:"tobaccoUser,omitempty"`
}

// QuoteDetails holds the coverage parameters used for premium quotes.
type QuoteDetails struct {
	SumAssured             string `json:"sumAssured,omitempty"`
	PolicyTermYears        string `json:"policyTerm_years,omitempty"`
	PremiumPayingTermYears string `json:"premiumPayingTerm_years,omitempty"`
	Frequency              string `json:"frequency,omitempty"`
	SelectedVariant        string `json:"selectedVariant,omitempty"`
}

// RiderSelection is one optional add-on benefit attached to the base quote.
type RiderSelection struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	UIN      string  `json:"uin"`
	Premium  float64 `json:"premium"`
	Selected bool    `json:"selected"`
}

// PaymentStatus enumerates the lifecycle of a premium payment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccess    PaymentStatus = "success"
	PaymentFailed     PaymentStatus = "failed"
)

// PaymentDetails tracks the payment state of the application.
type PaymentDetails struct {
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	Status        PaymentStatus `json:"status,omitempty"`
	PaymentID     string        `json:"paymentId,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	PolicyNumber  string        `json:"policyNumber,omitempty"`
}

// SectionCompletion is the derived completion entry for one form section.
type SectionCompletion struct {
	Completed            bool `json:"completed"`
	CompletionPercentage int  `json:"completion_percentage"`
}

// FormCompletion tracks derived completion for the four form sections.
// The JSON keys match the backend's form_completion payload.
type FormCompletion struct {
	PersonalDetails       SectionCompletion `json:"personal_details"`
	InsuranceRequirements SectionCompletion `json:"insurance_requirements"`
	RiderSelection        SectionCompletion `json:"rider_selection"`
	PaymentDetails        SectionCompletion `json:"payment_details"`
}

// Completion derives the completion entry for the personal-details section
// from the count of non-empty required fields.
func (p PersonalDetails) Completion() SectionCompletion {
	required := []string{
		p.FullName, p.DateOfBirth, p.Age, p.Gender,
		p.MobileNumber, p.Email, p.PinCode, p.AnnualIncome,
	}
	return sectionCompletion(required)
}

// Completion derives the completion entry for the insurance-requirements
// section from the count of non-empty required fields.
func (q QuoteDetails) Completion() SectionCompletion {
	required := []string{
		q.SumAssured, q.PolicyTermYears, q.PremiumPayingTermYears,
		q.Frequency, q.SelectedVariant,
	}
	return sectionCompletion(required)
}

// Completion derives the completion entry for the payment section. Payment
// is complete only when it reached the terminal success status with a
// payment id; a chosen method alone counts for half.
func (d PaymentDetails) Completion() SectionCompletion {
	if d.Status == PaymentSuccess && d.PaymentID != "" {
		return SectionCompletion{Completed: true, CompletionPercentage: 100}
	}
	if d.PaymentMethod != "" {
		return SectionCompletion{CompletionPercentage: 50}
	}
	return SectionCompletion{}
}

// RiderCompletion returns the completion entry for the rider section.
// Rider selection is always complete: an empty rider list is a valid
// terminal state.
func RiderCompletion() SectionCompletion {
	return SectionCompletion{Completed: true, CompletionPercentage: 100}
}

func sectionCompletion(required []string) SectionCompletion {
	filled := 0
	for _, v := range required {
		if v != "" {
			filled++
		}
	}
	pct := float64(filled) / float64(len(required)) * 100
	return SectionCompletion{
		Completed:            pct >= CompletionThreshold,
		CompletionPercentage: int(math.Round(pct)),
	}
}

// StepForState maps a backend session state to the wizard step that should
// be shown for it. Unknown states map to the first step.
func StepForState(state string) int {
	switch state {
	case "onboarding", "eligibility_check":
		return 0
	case "product_selection", "quote_generation":
		return 1
	case "addon_riders":
		return 2
	case "payment_initiated":
		return 3
	case "document_collection", "policy_issued":
		return 4
	default:
		return 0
	}
}

// FormSessionState is the persisted, resumable multi-step form state.
// Transient UI flags and the chat transcript are deliberately absent.
type FormSessionState struct {
	SessionID       string           `json:"sessionId,omitempty"`
	SessionState    string           `json:"sessionState"`
	PersonalDetails PersonalDetails  `json:"personalDetails"`
	QuoteDetails    QuoteDetails     `json:"quoteDetails"`
	RiderSelections []RiderSelection `json:"riderSelections"`
	PaymentDetails  PaymentDetails   `json:"paymentDetails"`
	FormCompletion  FormCompletion   `json:"formCompletion"`
	CurrentStep     int              `json:"currentStep"`
}

// EmptyFormSessionState returns the initial state used at session start
// and after an explicit reset.
func EmptyFormSessionState() FormSessionState {
	return FormSessionState{
		SessionState:    "onboarding",
		RiderSelections: []RiderSelection{},
	}
}
