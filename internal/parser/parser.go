// Package parser normalizes raw agent replies into display text plus
// optional structured side-effects. Backend language models answer with
// plain prose, bare JSON, prose with a trailing JSON blob, or half-broken
// JSON; ParseResponse turns all of those into something presentable and
// never fails; the worst case is the raw string handed back unchanged.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ParsedResponse is the normalized form of one agent reply. StoreUpdate
// and Metadata are only set when a structured payload was recognized.
type ParsedResponse struct {
	Text        string
	StoreUpdate any
	Metadata    map[string]any
}

// fallbackReply is shown when the reply is a full orchestration payload
// that carries no human-readable text at all.
const fallbackReply = "I'm working on your request. Please let me know if you need any additional information."

// messageFields are the reply-text keys probed, in order, when there is no
// "reply" field.
var messageFields = []string{"message", "response", "text", "content"}

// salvagePatterns recover reply text from JSON-looking strings that failed
// to parse (truncation, broken escaping). Ordered: more specific shapes
// first.
var salvagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)^\{\s*"reply"\s*:\s*"(.+?)"\s*,.*\}$`),
	regexp.MustCompile(`(?s)^\{\s*"reply"\s*:\s*"(.+?)"\s*\}$`),
	regexp.MustCompile(`(?s)^\{\s*"message"\s*:\s*"(.+?)"\s*,.*\}$`),
	regexp.MustCompile(`(?s)^\{\s*"message"\s*:\s*"(.+?)"\s*\}$`),
	regexp.MustCompile(`(?s)^\{[^}]*"mode"\s*:\s*"[^"]*"[^}]*"reply"\s*:\s*"(.+?)"[^}]*\}$`),
	regexp.MustCompile(`(?s)^\{[^}]*"reply"\s*:\s*"(.+?)"[^}]*"mode"\s*:\s*"[^"]*"[^}]*\}$`),
}

var unescaper = strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\t`, "\t", `\r`, "\r")

// ParseResponse normalizes a raw agent reply. It never returns an error:
// every parse failure falls through to the next strategy and ultimately to
// the raw input.
func ParseResponse(raw string) ParsedResponse {
	if raw == "" {
		return ParsedResponse{}
	}

	// Prose followed by a JSON blob. Only taken when there is a non-empty
	// prefix before the first brace: a string that is JSON from position
	// zero goes through whole-string extraction instead, otherwise the
	// reply text would be duplicated.
	if strings.Index(raw, "{") > 0 {
		if embedded, ok := parseEmbedded(raw); ok {
			return embedded
		}
	}

	return extractReply(raw)
}

// parseEmbedded handles replies of the form "<prose>\n{json}". The second
// return value is false when no embedded reply could be extracted.
func parseEmbedded(raw string) (ParsedResponse, bool) {
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first <= 0 || last <= first {
		return ParsedResponse{}, false
	}

	prose := strings.TrimSpace(raw[:first])
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw[first:last+1]), &obj); err != nil {
		return ParsedResponse{}, false
	}

	reply, ok := obj["reply"].(string)
	if !ok || reply == "" {
		return ParsedResponse{}, false
	}

	parts := make([]string, 0, 3)
	if prose != "" {
		parts = append(parts, prose)
	}
	parts = append(parts, reply)
	if next, ok := obj["next_question"].(string); ok && strings.TrimSpace(next) != "" {
		parts = append(parts, next)
	}

	return ParsedResponse{
		Text:        strings.Join(parts, "\n\n"),
		StoreUpdate: obj["store_update"],
		Metadata:    obj,
	}, true
}

// extractReply handles whole-string JSON, then regex salvage, then literal
// unescaping, in that order.
func extractReply(raw string) ParsedResponse {
	result := ParsedResponse{Text: raw}

	if looksLikeJSON(raw) {
		var parsed any
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err == nil {
			if obj, ok := parsed.(map[string]any); ok {
				if extracted, ok := replyFromObject(obj); ok {
					return extracted
				}
			}
		}
	}

	cleaned := raw
	for _, pattern := range salvagePatterns {
		if m := pattern.FindStringSubmatch(cleaned); m != nil {
			cleaned = m[1]
			break
		}
	}

	cleaned = strings.TrimSpace(unescaper.Replace(cleaned))
	if len(cleaned) > 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	if cleaned != raw && cleaned != "" {
		result.Text = cleaned
	}
	return result
}

// replyFromObject resolves display text from a parsed JSON object. The
// second return value is false when the object carries nothing usable.
func replyFromObject(obj map[string]any) (ParsedResponse, bool) {
	if reply, ok := obj["reply"].(string); ok && reply != "" {
		result := ParsedResponse{
			Text:        reply,
			StoreUpdate: obj["store_update"],
			Metadata:    obj,
		}
		if next, ok := obj["next_question"].(string); ok && strings.TrimSpace(next) != "" {
			result.Text = reply + "\n\n" + next
		}
		return result, true
	}

	for _, field := range messageFields {
		if text, ok := obj[field].(string); ok && text != "" {
			return ParsedResponse{Text: text, Metadata: obj}, true
		}
	}

	// Full orchestration payloads (mode/extracted/api_calls/reasoning)
	// with no reply still deserve an acknowledgement rather than raw JSON.
	if hasAny(obj, "mode", "extracted", "api_calls", "reasoning") {
		return ParsedResponse{Text: fallbackReply, Metadata: obj}, true
	}

	return ParsedResponse{}, false
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

func looksLikeJSON(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}

// ExtractQuoteData pulls quote information out of parse metadata: either a
// direct "quotes" object or successful premium_calculation entries in
// "api_results". Returns nil when the metadata carries no quotes.
func ExtractQuoteData(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	if quotes, ok := metadata["quotes"].(map[string]any); ok {
		return quotes
	}

	results, ok := metadata["api_results"].([]any)
	if !ok {
		return nil
	}
	for _, entry := range results {
		call, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		name, _ := call["name"].(string)
		success, _ := call["success"].(bool)
		if name != "premium_calculation" || !success {
			continue
		}
		result, _ := call["result"].(map[string]any)
		quotes, _ := result["quotes"].([]any)
		best, _ := result["best"].(map[string]any)
		if best == nil {
			best = map[string]any{}
		}
		if quotes == nil {
			quotes = []any{}
		}
		return map[string]any{
			"generated":   true,
			"best_quote":  best,
			"all_quotes":  quotes,
			"quote_count": len(quotes),
		}
	}
	return nil
}
