package stubagent

import (
	"encoding/json"
	"fmt"

	"github.com/etouchhq/insure-chat/internal/action"
)

// Scripted actions are authored as wire JSON and decoded through the
// action codec, so the stub exercises the same path real replies take.
var stateActions = map[string][]action.Action{
	"onboarding":        {mustAction(onboardingFormJSON)},
	"quote_generation":  {mustAction(quoteDisplayJSON)},
	"addon_riders":      {mustAction(riderOptionsJSON)},
	"payment_initiated": {mustAction(paymentButtonsJSON)},
	"document_collection": {
		mustAction(documentUploadJSON),
	},
	"policy_issued": {mustAction(receiptJSON)},
}

func actionsFor(state string) []action.Action {
	return stateActions[state]
}

func mustAction(raw string) action.Action {
	var a action.Action
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		panic(fmt.Sprintf("stubagent: bad scripted action: %v", err))
	}
	return a
}

const onboardingFormJSON = `{
  "type": "form",
  "title": "Personal Details",
  "description": "We need a few details to find the right plan for you.",
  "fields": [
    {"name": "fullName", "label": "Full Name", "type": "text", "required": true},
    {"name": "dateOfBirth", "label": "Date of Birth", "type": "date", "required": true,
     "validation": {"min_age": 18, "max_age": 65}},
    {"name": "gender", "label": "Gender", "type": "select", "required": true,
     "options": [
       {"value": "male", "label": "Male"},
       {"value": "female", "label": "Female"},
       {"value": "other", "label": "Other"}
     ]},
    {"name": "mobileNumber", "label": "Mobile Number", "type": "phone", "required": true,
     "validation": {"pattern": "^[6-9][0-9]{9}$", "custom_message": "Enter a valid 10-digit mobile number"}},
    {"name": "email", "label": "Email", "type": "email", "required": true},
    {"name": "pinCode", "label": "PIN Code", "type": "text", "required": true,
     "validation": {"pattern": "^[1-9][0-9]{5}$"}},
    {"name": "annualIncome", "label": "Annual Income", "type": "number", "required": true,
     "validation": {"min_value": 100000}}
  ],
  "submit_label": "Continue"
}`

const quoteDisplayJSON = `{
  "type": "quote_display",
  "title": "Your Plan Options",
  "variants": [
    {"name": "Life Shield", "premium": 12500, "sum_assured": 10000000,
     "policy_term": 30, "premium_paying_term": 30, "recommended": false,
     "features": ["Life cover till 70", "Tax benefits under 80C"],
     "action": "select_variant"},
    {"name": "Life Shield Plus", "premium": 15800, "sum_assured": 10000000,
     "policy_term": 30, "premium_paying_term": 30, "recommended": true,
     "features": ["Life cover till 70", "Accidental death benefit", "Tax benefits under 80C"],
     "action": "select_variant"},
    {"name": "Life Shield ROP", "premium": 24300, "sum_assured": 10000000,
     "policy_term": 30, "premium_paying_term": 30, "recommended": false,
     "features": ["Return of premium at maturity", "Life cover till 70"],
     "action": "select_variant"}
  ],
  "comparison_features": ["Premium", "Accidental cover", "Return of premium"]
}`

const riderOptionsJSON = `{
  "type": "options_selection",
  "title": "Add-on Riders",
  "description": "Optional benefits you can attach to your plan.",
  "selection_type": "multiple",
  "options": [
    {"value": "accidental_death", "label": "Accidental Death Benefit", "description": "Extra payout on accidental death"},
    {"value": "critical_illness", "label": "Critical Illness Cover", "description": "Lump sum on diagnosis of listed illnesses"},
    {"value": "waiver_of_premium", "label": "Waiver of Premium", "description": "Future premiums waived on disability"}
  ]
}`

const paymentButtonsJSON = `{
  "type": "payment_buttons",
  "title": "Complete Your Payment",
  "selected_quote": {
    "name": "Life Shield Plus",
    "annual_premium": 15800,
    "sum_assured": 10000000,
    "policy_term": 30
  },
  "buttons": [
    {"id": "pay_now", "label": "Pay Now", "type": "primary", "description": "Pay securely via UPI, card or net banking"},
    {"id": "pay_later", "label": "Pay Later", "type": "success", "description": "Get a payment link on your mobile"}
  ]
}`

const documentUploadJSON = `{
  "type": "document_upload",
  "title": "Upload Documents",
  "description": "KYC documents required to issue your policy.",
  "documents": [
    {"name": "pan_card", "label": "PAN Card", "required": true,
     "accepted_types": ["pdf", "jpg", "png"], "max_size_mb": 5},
    {"name": "address_proof", "label": "Address Proof", "required": true,
     "accepted_types": ["pdf", "jpg", "png"], "max_size_mb": 5},
    {"name": "income_proof", "label": "Income Proof", "required": false,
     "accepted_types": ["pdf"], "max_size_mb": 10}
  ]
}`

const receiptJSON = `{
  "type": "receipt",
  "title": "Policy Issued",
  "receipt_data": {
    "policy_details": {
      "policy_number": "ET-2026-0001234",
      "policy_holder_name": "Policy Holder",
      "plan_name": "Life Shield Plus",
      "sum_assured": 10000000,
      "annual_premium": 15800,
      "policy_term": 30,
      "premium_paying_term": 30,
      "policy_start_date": "2026-01-01",
      "policy_end_date": "2056-01-01",
      "payment_frequency": "annual",
      "features": ["Life cover till 70", "Accidental death benefit"]
    },
    "customer_details": {
      "name": "Policy Holder", "age": "32", "gender": "male",
      "mobile": "9876543210", "email": "holder@example.com",
      "pin_code": "560001", "smoker": "no"
    },
    "payment_details": {
      "transaction_id": "TXN123456789",
      "payment_method": "UPI",
      "amount_paid": 15800,
      "payment_date": "2026-01-01",
      "payment_status": "success",
      "next_due_date": "2027-01-01"
    },
    "company_details": {
      "company_name": "eTouch Life Insurance",
      "policy_type": "Term Life Insurance",
      "irdai_reg_no": "101",
      "toll_free": "1800-000-0000",
      "website": "www.example.com"
    },
    "benefit_illustration_pdf": {
      "available": true,
      "filename": "benefit_illustration_ET-2026-0001234.pdf",
      "description": "Detailed year-wise benefit illustration"
    }
  }
}`
