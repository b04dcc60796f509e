package state

import "kraterm/models"

// ActionKind names the effect the outer driver must carry out after a
// call to Update. The reducer never performs these itself.
type ActionKind string

const (
	ActionResyncBook        ActionKind = "resync_book"
	ActionSubscribe         ActionKind = "subscribe"
	ActionUnsubscribe       ActionKind = "unsubscribe"
	ActionPlaceOrder        ActionKind = "place_order"
	ActionCancelOrder       ActionKind = "cancel_order"
	ActionUpdateCredentials ActionKind = "update_credentials"
	ActionUpdateRiskLimit   ActionKind = "update_risk_limit"
	ActionSendAgentMessage  ActionKind = "send_agent_message"
)

// Action is the reducer's only output besides the mutated State. At most
// one Action is emitted per Update call.
type Action struct {
	Kind         ActionKind
	Symbol       string
	Channel      models.Channel
	AddOrder     models.AddOrderParams
	CancelOrder  []string
	NewAPIKey    string
	NewAPISecret string
	RiskField    string
	RiskValue    string
	Text         string
}
