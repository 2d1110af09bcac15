package counsellor

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// FallbackReasoning marks an interpretation built from unparseable text.
const FallbackReasoning = "Failed to parse structured response"

var (
	jsonFence  = regexp.MustCompile("```json\\s*")
	plainFence = regexp.MustCompile("```\\s*")
)

// Interpretation is the structured form of a provider reply.
type Interpretation struct {
	Message   string
	Actions   []WireAction
	Reasoning string
	// Fallback is set when the reply could not be parsed and Message holds
	// the raw text.
	Fallback bool
}

// Interpret parses raw provider text. It never fails: text that is not a
// JSON object yields the fallback interpretation.
func Interpret(raw string) Interpretation {
	if in, ok := parseStrict(stripFences(raw)); ok {
		return in
	}
	return Interpretation{
		Message:   raw,
		Actions:   []WireAction{noneAction()},
		Reasoning: FallbackReasoning,
		Fallback:  true,
	}
}

func stripFences(raw string) string {
	clean := jsonFence.ReplaceAllString(raw, "")
	return plainFence.ReplaceAllString(clean, "")
}

// parseStrict accepts only a single JSON object. Missing fields are empty.
func parseStrict(text string) (Interpretation, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return Interpretation{}, false
	}

	return Interpretation{
		Message:   textField(fields["message"]),
		Actions:   actionsField(fields["actions"]),
		Reasoning: textField(fields["reasoning"]),
	}, true
}

// textField returns a JSON string's value, or the raw JSON for any other
// non-null value.
func textField(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// actionsField normalises the actions value: a list stays a list, a single
// object becomes a one-element list, anything else is empty.
func actionsField(raw json.RawMessage) []WireAction {
	out := []WireAction{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return out
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return out
		}
		for _, item := range items {
			if w, ok := decodeWireAction(item); ok {
				out = append(out, w)
			}
		}
	case '{':
		if w, ok := decodeWireAction(raw); ok {
			out = append(out, w)
		}
	}
	return out
}

// decodeWireAction reads one action element field by field so that a bad
// payload does not discard the type. Null elements are dropped.
func decodeWireAction(raw json.RawMessage) (WireAction, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		// Non-object element: keep its slot as an unrecognised action.
		return WireAction{Type: TypeUnknown, Payload: map[string]any{}}, true
	}
	if fields == nil {
		return WireAction{}, false
	}

	w := WireAction{}
	_ = json.Unmarshal(fields["type"], &w.Type)
	_ = json.Unmarshal(fields["payload"], &w.Payload)
	if w.Payload == nil {
		w.Payload = map[string]any{}
	}
	return w, true
}
