package action

import (
	"fmt"
	"strings"
)

// Turn is the outbound chat turn produced for a user action event.
type Turn struct {
	Text       string
	FormData   map[string]any
	ActionData map[string]any
}

// Dispatch maps a user-originated action event (the payload emitted when a
// rendered action is interacted with) to a single outbound turn. The event
// carries an "action" kind plus kind-specific data. Unrecognized kinds are
// never dropped: they fall back to a generic text with the raw payload
// passed through, so the backend always observes forward progress.
func Dispatch(event map[string]any) Turn {
	kind, _ := event["action"].(string)

	switch kind {
	case "form_submit":
		formData, _ := event["form_data"].(map[string]any)
		return Turn{
			Text:     "Form submitted",
			FormData: formData,
			ActionData: map[string]any{
				"action":    "form_submit",
				"form_data": formData,
			},
		}
	case "select_variant":
		variant, _ := event["variant"].(string)
		return Turn{
			Text: fmt.Sprintf("I'd like to select the %s plan", variant),
			ActionData: map[string]any{
				"action":  "select_variant",
				"variant": variant,
			},
		}
	case "proceed_payment":
		return Turn{
			Text: "Proceeding to payment",
			ActionData: map[string]any{
				"action":      "proceed_payment",
				"payment_url": event["payment_url"],
			},
		}
	case "documents_uploaded":
		return Turn{
			Text: "Documents uploaded successfully",
			ActionData: map[string]any{
				"action":    "documents_uploaded",
				"documents": event["documents"],
			},
		}
	case "option_selected":
		return Turn{
			Text: "Selected: " + joinSelections(event["selected_options"]),
			ActionData: map[string]any{
				"action":           "option_selected",
				"selected_options": event["selected_options"],
			},
		}
	case "payment_method_selected":
		method, _ := event["payment_method"].(string)
		return Turn{
			Text: "Selected payment method: " + humanize(method),
			ActionData: map[string]any{
				"action":         "payment_method_selected",
				"payment_method": method,
				"selected_quote": event["selected_quote"],
			},
		}
	case "download_pdf":
		return Turn{
			Text: "Downloading benefit illustration PDF...",
			ActionData: map[string]any{
				"action":   "download_pdf",
				"filename": event["filename"],
			},
		}
	case "confirm", "cancel":
		confirmed, _ := event["confirmed"].(bool)
		return Turn{
			ActionData: map[string]any{
				"action":    kind,
				"confirmed": confirmed,
			},
		}
	default:
		return Turn{Text: "Action completed", ActionData: event}
	}
}

// joinSelections renders a selections value as comma-space-joined text when
// it is a sequence, else as the scalar verbatim.
func joinSelections(value any) string {
	switch v := value.(type) {
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func humanize(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}
