package state

import (
	"time"

	"kraterm/internal/auth"
	"kraterm/internal/bus"
	"kraterm/internal/metrics"
	"kraterm/internal/orderbook"
	"kraterm/logger"
	"kraterm/models"
)

// Update folds one bus message into state, returning an Action for the
// outer driver to carry out, if any. It is the sole mutator of state and
// performs no I/O.
func Update(s *State, msg bus.Message) (*Action, bool) {
	switch msg.Kind {
	case bus.MessageBook:
		return updateBook(s, msg)
	case bus.MessageTicker:
		if t, ok := msg.Payload.(*models.TickerData); ok {
			s.Tickers[t.Symbol] = *t
		}
	case bus.MessageBalance:
		if b, ok := msg.Payload.(*models.BalanceData); ok {
			s.Balances[b.Asset] = *b
		}
	case bus.MessageExecution:
		if e, ok := msg.Payload.(models.ExecutionData); ok {
			s.pushOpenOrder(e.Symbol, OpenOrder{
				OrderID:     e.OrderID,
				ClOrdID:     e.ClOrdID,
				Symbol:      e.Symbol,
				Side:        e.Side,
				OrderStatus: e.OrderStatus,
				UpdatedAt:   time.Now(),
			})
			metrics.SetOpenOrders(e.Symbol, len(s.Orders[e.Symbol]))
		}
	case bus.MessageAgentDecision:
		if d, ok := msg.Payload.(models.AgentDecision); ok {
			return actionFromDecision(d), true
		}
	case bus.MessageAgentTokenUse:
		if u, ok := msg.Payload.(models.AgentTokenUsage); ok {
			s.Agent.InputTokens += u.InputTokens
			s.Agent.OutputTokens += u.OutputTokens
		}
	case bus.MessageAgentExited:
		// The agent bridge already stops projecting bus messages to a dead
		// child; there is no per-agent state here to tear down.
	case bus.MessageAgentReady, bus.MessageAgentOutput:
		// Surfaced to the UI/log only; no state change.
	case bus.MessageTokenState:
		if st, ok := msg.Payload.(auth.State); ok {
			s.Token = st
			if st == auth.StateUnavailable {
				s.Private = SessionState{Status: StatusDisconnected}
			}
		}
	case bus.MessageConnStatus:
		if c, ok := msg.Payload.(bus.ConnStatusUpdate); ok {
			sess := SessionState{Status: ConnectionStatus(c.Status), Attempt: c.Attempt}
			if c.Session == "private" {
				s.Private = sess
			} else {
				s.Public = sess
			}
		}
	case bus.MessageStatus:
		// Exchange system status; no local state derives from it.
	case bus.MessageHeartbeat:
		// Liveness only; the connection manager's own read deadline is what
		// actually detects a stalled session.
	case bus.MessageKey:
		if intent, ok := msg.Payload.(bus.KeyIntent); ok {
			return actionFromKeyIntent(intent), true
		}
	case bus.MessageResize, bus.MessageTick:
		// Consumed only by the render loop; the reducer has no state
		// derived from either.
	}
	return nil, false
}

// actionFromKeyIntent translates one decoded operator command into the
// Action the outer driver carries out. This is the reducer's only
// keyboard-facing responsibility; decoding raw key events into a
// KeyIntent happens entirely in the (out-of-scope) terminal front end.
func actionFromKeyIntent(intent bus.KeyIntent) *Action {
	switch intent.Kind {
	case bus.KeyIntentSubscribe:
		return &Action{Kind: ActionSubscribe, Symbol: intent.Symbol, Channel: intent.Channel}
	case bus.KeyIntentUnsubscribe:
		return &Action{Kind: ActionUnsubscribe, Symbol: intent.Symbol, Channel: intent.Channel}
	case bus.KeyIntentPlaceOrder:
		return &Action{Kind: ActionPlaceOrder, Symbol: intent.Symbol, AddOrder: intent.AddOrder}
	case bus.KeyIntentCancelOrder:
		return &Action{Kind: ActionCancelOrder, Symbol: intent.Symbol, CancelOrder: []string{intent.OrderID}}
	case bus.KeyIntentResyncBook:
		return &Action{Kind: ActionResyncBook, Symbol: intent.Symbol, Channel: models.ChannelBook}
	case bus.KeyIntentSaveCredentials:
		return &Action{Kind: ActionUpdateCredentials, NewAPIKey: intent.APIKey, NewAPISecret: intent.APISecret}
	case bus.KeyIntentEditRiskLimit:
		return &Action{Kind: ActionUpdateRiskLimit, Symbol: intent.Symbol, RiskField: intent.RiskField, RiskValue: intent.RiskValue}
	case bus.KeyIntentSendAgentMessage:
		return &Action{Kind: ActionSendAgentMessage, Text: intent.Text}
	default:
		return nil
	}
}

func updateBook(s *State, msg bus.Message) (*Action, bool) {
	upd, ok := msg.Payload.(bus.BookUpdate)
	if !ok {
		return nil, false
	}

	book := s.bookFor(msg.Symbol)
	policy := s.resync[msg.Symbol]

	if upd.Type == "snapshot" {
		book.ApplySnapshot(upd.Book.Bids, upd.Book.Asks)
		policy.Reset()
		return nil, false
	}

	book.ApplyUpdate(upd.Book.Bids, upd.Book.Asks)

	if book.VerifyChecksum(s.checksumDepth, upd.Book.Checksum) {
		book.MarkResynced()
		policy.Reset()
		metrics.SetBookStale(msg.Symbol, false)
		return nil, false
	}

	exceeded := book.MarkChecksumFailure(s.resyncMaxAttempts)
	metrics.SetBookStale(msg.Symbol, true)
	logger.IncrementChecksumFailure(msg.Symbol)
	metrics.IncrementChecksumFailure(msg.Symbol)
	logger.GetLogger().WithComponent("state").WithFields(logger.Fields{
		"symbol":   msg.Symbol,
		"expected": upd.Book.Checksum,
		"actual":   book.Checksum(s.checksumDepth),
	}).Warn("order book checksum mismatch")

	if exceeded {
		return nil, false
	}

	if policy.Evaluate(time.Now()) == orderbook.DecisionResync {
		return &Action{Kind: ActionResyncBook, Symbol: msg.Symbol, Channel: models.ChannelBook}, true
	}
	return nil, false
}

func actionFromDecision(d models.AgentDecision) *Action {
	switch d.Type {
	case "place_order":
		params := models.AddOrderParams{
			OrderType: d.OrderType,
			Side:      d.Side,
			Symbol:    d.Symbol,
			ClOrdID:   d.ClOrdID,
		}
		if d.Qty != nil {
			params.OrderQty = *d.Qty
		}
		if d.LimitPrice != nil {
			params.LimitPrice = d.LimitPrice
		}
		return &Action{Kind: ActionPlaceOrder, Symbol: d.Symbol, AddOrder: params}
	case "cancel_order":
		return &Action{Kind: ActionCancelOrder, Symbol: d.Symbol, CancelOrder: []string{d.OrderID}}
	default:
		return nil
	}
}
