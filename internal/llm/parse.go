package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"kiosk/internal/domain"
)

var knownActions = map[string]struct{}{
	domain.ActionAdd:       {},
	domain.ActionUpdate:    {},
	domain.ActionRemove:    {},
	domain.ActionQuery:     {},
	domain.ActionRecommend: {},
	domain.ActionError:     {},
}

// ParseIntent validates the model's reply against the intent contract before
// any field is trusted. Anything that is not valid JSON with a known action
// and a list of items is rejected as a malformed intent.
func ParseIntent(raw string) (domain.Intent, error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return domain.Intent{}, fmt.Errorf("%w: empty response", domain.ErrMalformedIntent)
	}

	// Probe the envelope first so a non-list "items" or missing "action" is
	// reported as a contract violation rather than a decode quirk.
	var probe struct {
		Action json.RawMessage `json:"action"`
		Items  json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %v", domain.ErrMalformedIntent, err)
	}
	if len(probe.Action) == 0 {
		return domain.Intent{}, fmt.Errorf("%w: action is missing", domain.ErrMalformedIntent)
	}
	if len(probe.Items) != 0 && !json.Valid(probe.Items) {
		return domain.Intent{}, fmt.Errorf("%w: items is not valid JSON", domain.ErrMalformedIntent)
	}
	if len(probe.Items) != 0 && probe.Items[0] != '[' && string(probe.Items) != "null" {
		return domain.Intent{}, fmt.Errorf("%w: items is not a list", domain.ErrMalformedIntent)
	}

	var intent domain.Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return domain.Intent{}, fmt.Errorf("%w: %v", domain.ErrMalformedIntent, err)
	}
	intent.Action = strings.ToLower(strings.TrimSpace(intent.Action))
	if _, ok := knownActions[intent.Action]; !ok {
		return domain.Intent{}, fmt.Errorf("%w: unknown action %q", domain.ErrMalformedIntent, intent.Action)
	}
	return intent, nil
}

// stripFences removes a markdown code fence the model may wrap around the
// JSON despite instructions.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
