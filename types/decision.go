package types

type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Decision is the normalized form of one advisory output, valid for a single
// simulated period.
type Decision struct {
	Action    Action `json:"action"`
	Quantity  int64  `json:"quantity"`
	Rationale string `json:"rationale,omitempty"`
}

func NewHoldDecision(rationale string) Decision {
	return Decision{
		Action:    ActionHold,
		Quantity:  0,
		Rationale: rationale,
	}
}
