package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/etouchhq/insure-chat/internal/action"
)

func decode(t *testing.T, raw string) action.Action {
	t.Helper()
	var a action.Action
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("decode action: %v", err)
	}
	return a
}

func TestAction_UnknownTypeNotice(t *testing.T) {
	a := decode(t, `{"type": "video_call", "title": "Talk to us"}`)
	got := Action(&a)
	if !strings.Contains(got, "Unknown action type: video_call") {
		t.Errorf("rendered = %q, want unknown-type notice", got)
	}
	if !strings.Contains(got, "Talk to us") {
		t.Errorf("title dropped: %q", got)
	}
}

func TestAction_Form(t *testing.T) {
	a := decode(t, `{
	  "type": "form",
	  "title": "Personal Details",
	  "fields": [
	    {"name": "fullName", "label": "Full Name", "type": "text", "required": true},
	    {"name": "gender", "label": "Gender", "type": "select",
	     "options": [{"value": "female", "label": "Female"}]}
	  ],
	  "submit_label": "Continue"
	}`)

	got := Action(&a)
	for _, want := range []string{
		"=== Personal Details ===",
		"Full Name [text] (required)",
		"Gender [select]",
		"female: Female",
		"[Continue]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered form missing %q:\n%s", want, got)
		}
	}
}

func TestAction_QuoteDisplay(t *testing.T) {
	a := decode(t, `{
	  "type": "quote_display",
	  "title": "Plans",
	  "variants": [
	    {"name": "Base", "premium": 12500, "sum_assured": 10000000,
	     "policy_term": 30, "recommended": true, "features": ["Cover till 70"]}
	  ],
	  "comparison_features": ["Premium"]
	}`)

	got := Action(&a)
	for _, want := range []string{"Base (recommended)", "premium 12500.00", "Cover till 70", "Compare on: Premium"} {
		if !strings.Contains(got, want) {
			t.Errorf("rendered quotes missing %q:\n%s", want, got)
		}
	}
}

func TestAction_Confirmation_DefaultLabels(t *testing.T) {
	a := decode(t, `{"type": "confirmation", "title": "Confirm", "data_summary": {"Name": "Asha Rao"}}`)
	got := Action(&a)
	if !strings.Contains(got, "Name: Asha Rao") {
		t.Errorf("summary missing:\n%s", got)
	}
	if !strings.Contains(got, "[Confirm] [Cancel]") {
		t.Errorf("default labels missing:\n%s", got)
	}
}

func TestActions_JoinsBlocks(t *testing.T) {
	actions := []action.Action{
		decode(t, `{"type": "mystery_one", "title": "One"}`),
		decode(t, `{"type": "mystery_two", "title": "Two"}`),
	}
	got := Actions(actions)
	if !strings.Contains(got, "Unknown action type: mystery_one") ||
		!strings.Contains(got, "Unknown action type: mystery_two") {
		t.Errorf("rendered = %q", got)
	}
	if len(strings.Split(got, "\n\n")) < 2 {
		t.Errorf("blocks not separated: %q", got)
	}
}

func TestActions_Empty(t *testing.T) {
	if got := Actions(nil); got != "" {
		t.Errorf("Actions(nil) = %q, want empty", got)
	}
}
