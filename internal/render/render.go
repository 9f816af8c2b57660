// Package render turns actions into plain text for the terminal front
// end. Output carries no styling or layout information,
// just lines. An unknown action type always renders an explicit
// notice instead of being dropped, and is never an error.
package render

import (
	"fmt"
	"strings"

	"github.com/etouchhq/insure-chat/internal/action"
)

// Actions renders a message's action list, one block per action.
func Actions(actions []action.Action) string {
	if len(actions) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(actions))
	for i := range actions {
		blocks = append(blocks, Action(&actions[i]))
	}
	return strings.Join(blocks, "\n\n")
}

// Action renders a single action as plain text.
func Action(a *action.Action) string {
	var b strings.Builder
	if a.Title != "" {
		fmt.Fprintf(&b, "=== %s ===\n", a.Title)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n", a.Description)
	}

	switch {
	case a.Form != nil:
		renderForm(&b, a.Form)
	case a.QuoteDisplay != nil:
		renderQuotes(&b, a.QuoteDisplay)
	case a.PaymentRedirect != nil:
		renderPaymentRedirect(&b, a.PaymentRedirect)
	case a.DocumentUpload != nil:
		renderDocuments(&b, a.DocumentUpload)
	case a.OptionsSelection != nil:
		renderOptions(&b, a.OptionsSelection)
	case a.Confirmation != nil:
		renderConfirmation(&b, a.Confirmation)
	case a.PaymentButtons != nil:
		renderPaymentButtons(&b, a.PaymentButtons)
	case a.Receipt != nil:
		renderReceipt(&b, a.Receipt)
	case a.HumanHandoff != nil:
		renderHandoff(&b, a.HumanHandoff)
	default:
		fmt.Fprintf(&b, "Unknown action type: %s\n", a.Type)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderForm(b *strings.Builder, p *action.FormPayload) {
	for _, f := range p.Fields {
		marker := ""
		if f.Required {
			marker = " (required)"
		}
		fmt.Fprintf(b, "- %s [%s]%s\n", f.Label, f.Type, marker)
		for _, opt := range f.Options {
			fmt.Fprintf(b, "    * %s: %s\n", opt.Value, opt.Label)
		}
	}
	label := p.SubmitLabel
	if label == "" {
		label = "Submit"
	}
	fmt.Fprintf(b, "[%s]\n", label)
}

func renderQuotes(b *strings.Builder, p *action.QuoteDisplayPayload) {
	for _, v := range p.Variants {
		rec := ""
		if v.Recommended {
			rec = " (recommended)"
		}
		fmt.Fprintf(b, "- %s%s: premium %.2f, sum assured %.0f, term %d years\n",
			v.Name, rec, v.Premium, v.SumAssured, v.PolicyTerm)
		for _, f := range v.Features {
			fmt.Fprintf(b, "    * %s\n", f)
		}
	}
	if len(p.ComparisonFeatures) > 0 {
		fmt.Fprintf(b, "Compare on: %s\n", strings.Join(p.ComparisonFeatures, ", "))
	}
}

func renderPaymentRedirect(b *strings.Builder, p *action.PaymentRedirectPayload) {
	d := p.PaymentDetails
	fmt.Fprintf(b, "Plan %s: %.2f %s (%s), sum assured %.0f, term %d/%d years\n",
		d.VariantName, d.Amount, d.Currency, d.PremiumFrequency,
		d.SumAssured, d.PolicyTerm, d.PremiumPayingTerm)
	fmt.Fprintf(b, "Payment page: %s\n", p.RedirectURL)
}

func renderDocuments(b *strings.Builder, p *action.DocumentUploadPayload) {
	for _, d := range p.Documents {
		marker := ""
		if d.Required {
			marker = " (required)"
		}
		fmt.Fprintf(b, "- %s%s: %s, max %.0f MB\n",
			d.Label, marker, strings.Join(d.AcceptedTypes, "/"), d.MaxSizeMB)
	}
}

func renderOptions(b *strings.Builder, p *action.OptionsSelectionPayload) {
	mode := p.SelectionType
	if mode == "" {
		mode = "single"
	}
	fmt.Fprintf(b, "Select (%s):\n", mode)
	for _, opt := range p.Options {
		fmt.Fprintf(b, "- %s: %s\n", opt.Value, opt.Label)
	}
}

func renderConfirmation(b *strings.Builder, p *action.ConfirmationPayload) {
	for key, value := range p.DataSummary {
		fmt.Fprintf(b, "- %s: %v\n", key, value)
	}
	confirm := p.ConfirmLabel
	if confirm == "" {
		confirm = "Confirm"
	}
	cancel := p.CancelLabel
	if cancel == "" {
		cancel = "Cancel"
	}
	fmt.Fprintf(b, "[%s] [%s]\n", confirm, cancel)
}

func renderPaymentButtons(b *strings.Builder, p *action.PaymentButtonsPayload) {
	q := p.SelectedQuote
	fmt.Fprintf(b, "Selected plan %s: annual premium %.2f, sum assured %.0f, term %d years\n",
		q.Name, q.AnnualPremium, q.SumAssured, q.PolicyTerm)
	for _, btn := range p.Buttons {
		fmt.Fprintf(b, "[%s] %s\n", btn.Label, btn.Description)
	}
}

func renderReceipt(b *strings.Builder, p *action.ReceiptPayload) {
	r := p.ReceiptData
	fmt.Fprintf(b, "Policy %s (%s) for %s\n",
		r.PolicyDetails.PolicyNumber, r.PolicyDetails.PlanName, r.PolicyDetails.PolicyHolderName)
	fmt.Fprintf(b, "Sum assured %.0f, annual premium %.2f, term %d years (%s - %s)\n",
		r.PolicyDetails.SumAssured, r.PolicyDetails.AnnualPremium,
		r.PolicyDetails.PolicyTerm, r.PolicyDetails.PolicyStartDate, r.PolicyDetails.PolicyEndDate)
	fmt.Fprintf(b, "Payment %s via %s: %.2f on %s (%s), next due %s\n",
		r.PaymentDetails.TransactionID, r.PaymentDetails.PaymentMethod,
		r.PaymentDetails.AmountPaid, r.PaymentDetails.PaymentDate,
		r.PaymentDetails.PaymentStatus, r.PaymentDetails.NextDueDate)
	fmt.Fprintf(b, "%s | %s | IRDAI reg %s | %s | %s\n",
		r.CompanyDetails.CompanyName, r.CompanyDetails.PolicyType,
		r.CompanyDetails.IRDAIRegNo, r.CompanyDetails.TollFree, r.CompanyDetails.Website)
	if r.BenefitIllustrationPDF.Available {
		fmt.Fprintf(b, "Benefit illustration: %s\n", r.BenefitIllustrationPDF.Filename)
	}
}

func renderHandoff(b *strings.Builder, p *action.HumanAgentHandoffPayload) {
	fmt.Fprintf(b, "%s\n", p.Message)
	if p.EstimatedWaitTime != "" {
		fmt.Fprintf(b, "Estimated wait time: %s\n", p.EstimatedWaitTime)
	}
}
