// Package state implements the single-threaded reducer that folds bus
// messages into application state. It is the sole mutator of that state;
// callers hand it one message at a time and act on the Action it may
// return. The reducer performs no I/O and touches no channels directly.
package state

import (
	"time"

	"kraterm/internal/auth"
	"kraterm/internal/orderbook"
	"kraterm/models"
)

// ConnectionStatus mirrors one session's lifecycle.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusReconnecting ConnectionStatus = "reconnecting"
)

// SessionState tracks one WebSocket session's connectivity.
type SessionState struct {
	Status  ConnectionStatus
	Attempt int
}

// maxOpenOrdersPerSymbol is the drop-oldest cap on tracked open orders.
const maxOpenOrdersPerSymbol = 200

// OpenOrder is a lightweight projection of an order's current status,
// built from execution reports. Fill/price detail beyond what routing
// and risk decisions need is left in the raw ExecutionData forwarded to
// agents; the reducer does not attempt to reconstruct a full order book
// of its own orders.
type OpenOrder struct {
	OrderID     string
	ClOrdID     string
	Symbol      string
	Side        string
	OrderStatus string
	UpdatedAt   time.Time
}

// AgentUsageTotals accumulates token counts across an agent's lifetime.
type AgentUsageTotals struct {
	InputTokens  int64
	OutputTokens int64
}

// EstimatedCost prices the accumulated token counts against the
// per-token costs configured for the agent's model, in USD.
func (a AgentUsageTotals) EstimatedCost(inputCostPerToken, outputCostPerToken float64) float64 {
	return float64(a.InputTokens)*inputCostPerToken + float64(a.OutputTokens)*outputCostPerToken
}

// State is the full application state folded from the bus. Every field
// is owned exclusively by the reducer goroutine.
type State struct {
	Books    map[string]*orderbook.Book
	resync   map[string]*orderbook.ResyncPolicy
	Public   SessionState
	Private  SessionState
	Token    auth.State
	Tickers  map[string]models.TickerData
	Balances map[string]models.BalanceData
	Orders   map[string][]OpenOrder
	Agent    AgentUsageTotals

	bookMaxLevels     int
	checksumDepth     int
	resyncCooldown    time.Duration
	resyncMaxAttempts int
}

// New builds an empty State configured with the order book engine's
// tunables, applied uniformly to every symbol's book as it is created.
func New(bookMaxLevels, checksumDepth, resyncMaxAttempts int, resyncCooldown time.Duration) *State {
	return &State{
		Books:             make(map[string]*orderbook.Book),
		resync:            make(map[string]*orderbook.ResyncPolicy),
		Tickers:           make(map[string]models.TickerData),
		Balances:          make(map[string]models.BalanceData),
		Orders:            make(map[string][]OpenOrder),
		bookMaxLevels:     bookMaxLevels,
		checksumDepth:     checksumDepth,
		resyncCooldown:    resyncCooldown,
		resyncMaxAttempts: resyncMaxAttempts,
	}
}

func (s *State) bookFor(symbol string) *orderbook.Book {
	b, ok := s.Books[symbol]
	if !ok {
		b = orderbook.New(symbol, s.bookMaxLevels)
		s.Books[symbol] = b
		s.resync[symbol] = orderbook.NewResyncPolicy(symbol, s.resyncCooldown)
	}
	return b
}

func (s *State) pushOpenOrder(symbol string, o OpenOrder) {
	orders := s.Orders[symbol]
	orders = append(orders, o)
	if len(orders) > maxOpenOrdersPerSymbol {
		orders = orders[len(orders)-maxOpenOrdersPerSymbol:]
	}
	s.Orders[symbol] = orders
}
