// Package action defines the typed contract for interactive payloads a bot
// reply may carry, plus field validation and the mapping from user action
// events back to outbound chat turns.
package action

import (
	"encoding/json"
	"fmt"
)

// Known action types. An action whose type is outside this set still
// decodes (with its raw payload preserved) so renderers can surface an
// explicit unknown-action notice instead of dropping it.
const (
	TypeForm              = "form"
	TypeQuoteDisplay      = "quote_display"
	TypePaymentRedirect   = "payment_redirect"
	TypeDocumentUpload    = "document_upload"
	TypeOptionsSelection  = "options_selection"
	TypeConfirmation      = "confirmation"
	TypePaymentButtons    = "payment_buttons"
	TypeReceipt           = "receipt"
	TypeHumanAgentHandoff = "human_agent_handoff"
)

// Action is the tagged union of interactive payloads. Exactly one of the
// variant pointers is populated for a known type; for unknown types all
// variant pointers are nil and only Type/Title/Description and the raw
// payload are available.
type Action struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	Form             *FormPayload              `json:"-"`
	QuoteDisplay     *QuoteDisplayPayload      `json:"-"`
	PaymentRedirect  *PaymentRedirectPayload   `json:"-"`
	DocumentUpload   *DocumentUploadPayload    `json:"-"`
	OptionsSelection *OptionsSelectionPayload  `json:"-"`
	Confirmation     *ConfirmationPayload      `json:"-"`
	PaymentButtons   *PaymentButtonsPayload    `json:"-"`
	Receipt          *ReceiptPayload           `json:"-"`
	HumanHandoff     *HumanAgentHandoffPayload `json:"-"`

	raw json.RawMessage
}

// Known reports whether the action type belongs to the closed variant set.
func (a *Action) Known() bool {
	switch a.Type {
	case TypeForm, TypeQuoteDisplay, TypePaymentRedirect, TypeDocumentUpload,
		TypeOptionsSelection, TypeConfirmation, TypePaymentButtons,
		TypeReceipt, TypeHumanAgentHandoff:
		return true
	}
	return false
}

// Raw returns the original JSON the action was decoded from. Actions pass
// through the client verbatim, so the wire bytes are kept.
func (a *Action) Raw() json.RawMessage {
	return a.raw
}

// UnmarshalJSON decodes the envelope, then the variant payload selected by
// the type tag. Unknown types are not an error.
func (a *Action) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode action envelope: %w", err)
	}

	a.Type = envelope.Type
	a.Title = envelope.Title
	a.Description = envelope.Description
	a.raw = append(json.RawMessage(nil), data...)

	var err error
	switch a.Type {
	case TypeForm:
		a.Form = &FormPayload{}
		err = json.Unmarshal(data, a.Form)
	case TypeQuoteDisplay:
		a.QuoteDisplay = &QuoteDisplayPayload{}
		err = json.Unmarshal(data, a.QuoteDisplay)
	case TypePaymentRedirect:
		a.PaymentRedirect = &PaymentRedirectPayload{}
		err = json.Unmarshal(data, a.PaymentRedirect)
	case TypeDocumentUpload:
		a.DocumentUpload = &DocumentUploadPayload{}
		err = json.Unmarshal(data, a.DocumentUpload)
	case TypeOptionsSelection:
		a.OptionsSelection = &OptionsSelectionPayload{}
		err = json.Unmarshal(data, a.OptionsSelection)
	case TypeConfirmation:
		a.Confirmation = &ConfirmationPayload{}
		err = json.Unmarshal(data, a.Confirmation)
	case TypePaymentButtons:
		a.PaymentButtons = &PaymentButtonsPayload{}
		err = json.Unmarshal(data, a.PaymentButtons)
	case TypeReceipt:
		a.Receipt = &ReceiptPayload{}
		err = json.Unmarshal(data, a.Receipt)
	case TypeHumanAgentHandoff:
		a.HumanHandoff = &HumanAgentHandoffPayload{}
		err = json.Unmarshal(data, a.HumanHandoff)
	}
	if err != nil {
		return fmt.Errorf("decode %s action payload: %w", a.Type, err)
	}
	return nil
}

// MarshalJSON re-emits the original wire bytes when available so that
// actions survive a decode/encode round trip unchanged.
func (a Action) MarshalJSON() ([]byte, error) {
	if len(a.raw) > 0 {
		return a.raw, nil
	}
	type plain struct {
		Type        string `json:"type"`
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}
	return json.Marshal(plain{Type: a.Type, Title: a.Title, Description: a.Description})
}

// FieldOption is one choice for select/radio/checkbox fields.
type FieldOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// ValidationRule constrains a form field value.
type ValidationRule struct {
	Pattern       string   `json:"pattern,omitempty"`
	MinLength     *int     `json:"min_length,omitempty"`
	MaxLength     *int     `json:"max_length,omitempty"`
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	MinAge        *int     `json:"min_age,omitempty"`
	MaxAge        *int     `json:"max_age,omitempty"`
	CustomMessage string   `json:"custom_message,omitempty"`
}

// FieldSpec describes one input of a dynamic form.
type FieldSpec struct {
	Name         string          `json:"name"`
	Label        string          `json:"label"`
	Type         string          `json:"type"` // text|email|number|date|select|radio|checkbox|textarea|phone
	Required     bool            `json:"required"`
	Placeholder  string          `json:"placeholder,omitempty"`
	Options      []FieldOption   `json:"options,omitempty"`
	Validation   *ValidationRule `json:"validation,omitempty"`
	DefaultValue string          `json:"default_value,omitempty"`
	HelpText     string          `json:"help_text,omitempty"`
}

// FormPayload asks the customer to fill a data-collection form.
type FormPayload struct {
	Fields      []FieldSpec `json:"fields"`
	SubmitLabel string      `json:"submit_label"`
}

// QuoteVariant is one plan option in a quote comparison.
type QuoteVariant struct {
	Name              string   `json:"name"`
	Premium           float64  `json:"premium"`
	Features          []string `json:"features"`
	SumAssured        float64  `json:"sum_assured"`
	PolicyTerm        int      `json:"policy_term"`
	PremiumPayingTerm int      `json:"premium_paying_term"`
	Recommended       bool     `json:"recommended"`
	Action            string   `json:"action"`
}

// QuoteDisplayPayload presents plan variants for comparison.
type QuoteDisplayPayload struct {
	Variants           []QuoteVariant `json:"variants"`
	ComparisonFeatures []string       `json:"comparison_features,omitempty"`
}

// PaymentSummary carries the amounts shown before redirecting to payment.
type PaymentSummary struct {
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	PremiumFrequency  string  `json:"premium_frequency"`
	VariantName       string  `json:"variant_name"`
	SumAssured        float64 `json:"sum_assured"`
	PolicyTerm        int     `json:"policy_term"`
	PremiumPayingTerm int     `json:"premium_paying_term"`
}

// PaymentRedirectPayload sends the customer to an external payment page.
type PaymentRedirectPayload struct {
	PaymentDetails PaymentSummary `json:"payment_details"`
	RedirectURL    string         `json:"redirect_url"`
}

// DocumentSpec describes one document requested for upload.
type DocumentSpec struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Required      bool     `json:"required"`
	AcceptedTypes []string `json:"accepted_types"`
	MaxSizeMB     float64  `json:"max_size_mb"`
	Description   string   `json:"description,omitempty"`
}

// DocumentUploadPayload requests KYC/medical documents.
type DocumentUploadPayload struct {
	Documents []DocumentSpec `json:"documents"`
}

// OptionsSelectionPayload offers a single or multiple choice.
type OptionsSelectionPayload struct {
	Options       []FieldOption `json:"options"`
	SelectionType string        `json:"selection_type"` // single|multiple
}

// ConfirmationPayload asks the customer to confirm or cancel.
type ConfirmationPayload struct {
	DataSummary  map[string]any `json:"data_summary,omitempty"`
	ConfirmLabel string         `json:"confirm_label,omitempty"`
	CancelLabel  string         `json:"cancel_label,omitempty"`
}

// SelectedQuote is the plan a payment is being collected for.
type SelectedQuote struct {
	Name          string  `json:"name"`
	AnnualPremium float64 `json:"annual_premium"`
	SumAssured    float64 `json:"sum_assured"`
	PolicyTerm    int     `json:"policy_term"`
}

// PaymentButton is one payment flow entry point.
type PaymentButton struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Type        string `json:"type"` // primary|success|danger
	Description string `json:"description"`
}

// PaymentButtonsPayload presents payment method choices for a quote.
type PaymentButtonsPayload struct {
	SelectedQuote SelectedQuote   `json:"selected_quote"`
	Buttons       []PaymentButton `json:"buttons"`
}

// PolicyDetails is the policy block of a receipt.
type PolicyDetails struct {
	PolicyNumber      string   `json:"policy_number"`
	PolicyHolderName  string   `json:"policy_holder_name"`
	PlanName          string   `json:"plan_name"`
	SumAssured        float64  `json:"sum_assured"`
	AnnualPremium     float64  `json:"annual_premium"`
	PolicyTerm        int      `json:"policy_term"`
	PremiumPayingTerm int      `json:"premium_paying_term"`
	PolicyStartDate   string   `json:"policy_start_date"`
	PolicyEndDate     string   `json:"policy_end_date"`
	PaymentFrequency  string   `json:"payment_frequency"`
	Features          []string `json:"features"`
}

// CustomerDetails is the customer block of a receipt.
type CustomerDetails struct {
	Name    string `json:"name"`
	Age     string `json:"age"`
	Gender  string `json:"gender"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	PinCode string `json:"pin_code"`
	Smoker  string `json:"smoker"`
}

// ReceiptPaymentDetails is the payment block of a receipt.
type ReceiptPaymentDetails struct {
	TransactionID string  `json:"transaction_id"`
	PaymentMethod string  `json:"payment_method"`
	AmountPaid    float64 `json:"amount_paid"`
	PaymentDate   string  `json:"payment_date"`
	PaymentStatus string  `json:"payment_status"`
	NextDueDate   string  `json:"next_due_date"`
}

// CompanyDetails is the insurer block of a receipt.
type CompanyDetails struct {
	CompanyName string `json:"company_name"`
	PolicyType  string `json:"policy_type"`
	IRDAIRegNo  string `json:"irdai_reg_no"`
	TollFree    string `json:"toll_free"`
	Website     string `json:"website"`
}

// BenefitIllustrationPDF points at the downloadable benefit illustration.
type BenefitIllustrationPDF struct {
	Available   bool   `json:"available"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

// ReceiptData is the nested record renderers expect for issued policies.
type ReceiptData struct {
	PolicyDetails          PolicyDetails          `json:"policy_details"`
	CustomerDetails        CustomerDetails        `json:"customer_details"`
	PaymentDetails         ReceiptPaymentDetails  `json:"payment_details"`
	CompanyDetails         CompanyDetails         `json:"company_details"`
	BenefitIllustrationPDF BenefitIllustrationPDF `json:"benefit_illustration_pdf"`
}

// ReceiptPayload shows the final policy receipt.
type ReceiptPayload struct {
	ReceiptData ReceiptData `json:"receipt_data"`
}

// HumanAgentHandoffPayload hands the conversation to a human agent.
type HumanAgentHandoffPayload struct {
	Message           string `json:"message"`
	EstimatedWaitTime string `json:"estimated_wait_time,omitempty"`
}
