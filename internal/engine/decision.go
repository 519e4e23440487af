package engine

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/1517005260/AShareAgent-sub001/types"
)

// Keyword tables for the free-text fallback. Matching is case-insensitive;
// a payload hitting both tables resolves to hold.
var (
	buyKeywords  = []string{"buy", "bullish", "upside"}
	sellKeywords = []string{"sell", "bearish", "downside", "risk"}
)

type rawDecision struct {
	Action    *string `json:"action"`
	Quantity  float64 `json:"quantity"`
	Rationale string  `json:"reasoning"`
}

// ParseDecision normalizes a raw advisory payload into a Decision. JSON with
// an "action" key wins; anything else falls back to keyword classification.
// The result is always a well-formed Decision, never an error.
func ParseDecision(raw string) types.Decision {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.NewHoldDecision("empty decision payload")
	}

	if d, ok := parseStructured(trimmed); ok {
		return d
	}
	return classifyFreeText(trimmed)
}

func parseStructured(payload string) (types.Decision, bool) {
	var rd rawDecision
	if err := json.Unmarshal([]byte(payload), &rd); err != nil || rd.Action == nil {
		// The payload may wrap the JSON object in prose.
		inner, ok := extractJSONObject(payload)
		if !ok {
			return types.Decision{}, false
		}
		rd = rawDecision{}
		if err := json.Unmarshal([]byte(inner), &rd); err != nil || rd.Action == nil {
			return types.Decision{}, false
		}
	}

	action := types.Action(strings.ToLower(strings.TrimSpace(*rd.Action)))
	switch action {
	case types.ActionBuy, types.ActionSell, types.ActionHold:
	default:
		action = types.ActionHold
	}

	qty := int64(0)
	if rd.Quantity > 0 && !math.IsInf(rd.Quantity, 1) {
		qty = int64(math.Floor(rd.Quantity))
	}

	return types.Decision{
		Action:    action,
		Quantity:  qty,
		Rationale: rd.Rationale,
	}, true
}

// extractJSONObject returns the substring between the first '{' and the last
// '}' of the payload.
func extractJSONObject(payload string) (string, bool) {
	start := strings.Index(payload, "{")
	end := strings.LastIndex(payload, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return payload[start : end+1], true
}

func classifyFreeText(payload string) types.Decision {
	lowered := strings.ToLower(payload)

	buyHit := containsAny(lowered, buyKeywords)
	sellHit := containsAny(lowered, sellKeywords)

	switch {
	case buyHit && !sellHit:
		return types.Decision{Action: types.ActionBuy, Rationale: payload}
	case sellHit && !buyHit:
		return types.Decision{Action: types.ActionSell, Rationale: payload}
	default:
		return types.NewHoldDecision(payload)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
