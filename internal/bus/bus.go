// Package bus is the bounded, multi-producer event bus that carries
// exchange messages and connection commands between the connection
// manager, order book engine, RPC layer, agent bridge, and the single
// state reducer that consumes them. Every send is best-effort: a full
// channel means a slow or stalled consumer, and the bus drops the
// message and logs a warning rather than blocking a producer goroutine.
package bus

import (
	"encoding/json"
	"time"

	"kraterm/internal/metrics"
	"kraterm/logger"
	"kraterm/models"
)

// MessageKind identifies the origin and shape of a bus Message.
type MessageKind string

const (
	MessageBook          MessageKind = "book"
	MessageTicker        MessageKind = "ticker"
	MessageTrade         MessageKind = "trade"
	MessageCandle        MessageKind = "candle"
	MessageInstrument    MessageKind = "instrument"
	MessageExecution     MessageKind = "execution"
	MessageBalance       MessageKind = "balance"
	MessageOrders        MessageKind = "orders"
	MessageStatus        MessageKind = "status"
	MessageHeartbeat     MessageKind = "heartbeat"
	MessageAgentDecision MessageKind = "agent_decision"
	MessageAgentOutput   MessageKind = "agent_output"
	MessageAgentReady    MessageKind = "agent_ready"
	MessageAgentExited   MessageKind = "agent_exited"
	MessageAgentTokenUse MessageKind = "agent_token_usage"
	MessageTokenState    MessageKind = "token_state"
	MessageConnStatus    MessageKind = "connection_status"
	MessageKey           MessageKind = "key"
	MessageResize        MessageKind = "resize"
	MessageTick          MessageKind = "tick"
)

// KeyIntentKind names an already-decoded operator command. The terminal
// front end owns turning raw key codes, focus state, and in-progress
// form edits into one of these; nothing but this closed vocabulary ever
// reaches the bus.
type KeyIntentKind string

const (
	KeyIntentSubscribe        KeyIntentKind = "subscribe"
	KeyIntentUnsubscribe      KeyIntentKind = "unsubscribe"
	KeyIntentPlaceOrder       KeyIntentKind = "place_order"
	KeyIntentCancelOrder      KeyIntentKind = "cancel_order"
	KeyIntentResyncBook       KeyIntentKind = "resync_book"
	KeyIntentSaveCredentials  KeyIntentKind = "save_credentials"
	KeyIntentEditRiskLimit    KeyIntentKind = "edit_risk_limit"
	KeyIntentSendAgentMessage KeyIntentKind = "send_agent_message"
)

// KeyIntent is the payload of a MessageKey: one fully-decoded operator
// command, ready for the state reducer to translate into an Action.
type KeyIntent struct {
	Kind      KeyIntentKind
	Symbol    string
	Channel   models.Channel
	AddOrder  models.AddOrderParams
	OrderID   string
	APIKey    string
	APISecret string
	RiskField string
	RiskValue string
	Text      string
}

// ResizeEvent carries the terminal's new dimensions; the reducer has no
// state derived from it and it exists purely so the render loop's input
// stream is fully represented on the bus like every other event source.
type ResizeEvent struct {
	Width  int
	Height int
}

// Message is one event flowing through the bus. Payload carries the raw
// decoded JSON for the concrete type named by Kind; consumers type-assert
// or re-decode as needed.
type Message struct {
	Kind      MessageKind
	Symbol    string
	Session   string
	Payload   any
	Timestamp time.Time
}

// ConnStatusUpdate reports a change in one session's connectivity.
// Session is "public" or "private"; Status is one of the
// internal/state.ConnectionStatus string values, kept as a plain string
// here so bus does not import state (state already imports bus).
type ConnStatusUpdate struct {
	Session string
	Status  string
	Attempt int
}

// BookUpdate pairs a decoded book payload with the envelope type
// ("snapshot" or "update") so the state reducer knows whether to replace
// or merge into the existing book for MessageBook payloads.
type BookUpdate struct {
	Type string
	Book models.BookData
}

// CommandKind identifies a directive sent to the connection manager.
type CommandKind string

const (
	CommandResync             CommandKind = "resync"
	CommandTokenExpired       CommandKind = "token_expired"
	CommandShutdown           CommandKind = "shutdown"
	CommandCredentialsUpdated CommandKind = "credentials_updated"
)

// ConnectionCommand is a directive delivered to the connection manager's
// supervisor loop, e.g. to force a resync of one symbol's book or to
// begin a graceful shutdown.
type ConnectionCommand struct {
	Kind   CommandKind
	Symbol string
	Reason string
}

// Bus is a bounded fan-in point: many producers, one consumer per
// channel. Neither channel is ever closed by a Send call; only Close
// closes them, and only once every producer has stopped.
type Bus struct {
	messages chan Message
	commands chan ConnectionCommand
	log      *logger.Entry
}

// New creates a Bus with the given buffer capacities.
func New(messageCapacity, commandCapacity int) *Bus {
	return &Bus{
		messages: make(chan Message, messageCapacity),
		commands: make(chan ConnectionCommand, commandCapacity),
		log:      logger.GetLogger().WithComponent("bus"),
	}
}

// Messages returns the read side of the message channel for the state
// reducer to consume.
func (b *Bus) Messages() <-chan Message {
	return b.messages
}

// Commands returns the read side of the command channel for the
// connection manager's supervisor to consume.
func (b *Bus) Commands() <-chan ConnectionCommand {
	return b.commands
}

// SendMessage attempts to enqueue msg without blocking. If the buffer is
// full the message is dropped and a warning is logged with enough
// context to diagnose which producer is outrunning the reducer.
func (b *Bus) SendMessage(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	select {
	case b.messages <- msg:
	default:
		logger.IncrementBusDrop()
		metrics.IncrementBusDrop()
		b.log.WithFields(logger.Fields{
			"kind":   string(msg.Kind),
			"symbol": msg.Symbol,
		}).Warn("message bus full, dropping message")
	}
}

// SendCommand attempts to enqueue cmd without blocking, dropping and
// logging on a full buffer just like SendMessage.
func (b *Bus) SendCommand(cmd ConnectionCommand) {
	select {
	case b.commands <- cmd:
	default:
		logger.IncrementCommandDrop()
		metrics.IncrementCommandDrop()
		b.log.WithFields(logger.Fields{
			"kind":   string(cmd.Kind),
			"symbol": cmd.Symbol,
		}).Warn("command bus full, dropping command")
	}
}

// Close closes both channels. Callers must guarantee no producer sends
// after Close is called.
func (b *Bus) Close() {
	close(b.messages)
	close(b.commands)
}

// MarshalPayload is a convenience for producers that already hold a raw
// JSON payload from the wire and want to hand it to the bus without a
// decode/re-encode round trip.
func MarshalPayload(v any) (json.RawMessage, error) {
	return json.Marshal(v)
}
