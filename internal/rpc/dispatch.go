package rpc

import (
	"encoding/json"

	"kraterm/internal/bus"
	"kraterm/logger"
	"kraterm/models"
)

// forward decodes an uncorrelated pushed envelope by channel and puts the
// resulting typed payload on the bus. Envelopes on channels this client
// does not understand are logged and dropped rather than crashing the
// read loop that called Handle.
func (c *Client) forward(session string, env models.Envelope) {
	switch models.Channel(env.Channel) {
	case models.ChannelBook:
		c.forwardBook(session, env)
	case models.ChannelTicker:
		c.forwardTicker(session, env)
	case models.ChannelTrade:
		c.forwardTradeList(session, env)
	case models.ChannelCandles:
		c.forwardTyped(session, env, bus.MessageCandle, new(models.CandleData))
	case models.ChannelInstruments:
		c.forwardTyped(session, env, bus.MessageInstrument, new(models.InstrumentData))
	case models.ChannelExecutions:
		c.forwardExecutionList(session, env)
	case "balances":
		c.forwardTyped(session, env, bus.MessageBalance, new(models.BalanceData))
	case models.ChannelOrders:
		c.forwardTyped(session, env, bus.MessageOrders, new(models.L3BookData))
	case models.ChannelStatus:
		c.forwardTyped(session, env, bus.MessageStatus, new(models.StatusData))
	case models.ChannelHeartbeat:
		c.bus.SendMessage(bus.Message{Kind: bus.MessageHeartbeat, Session: session})
	default:
		if env.Channel != "" {
			c.log.WithFields(logger.Fields{"channel": env.Channel, "session": session}).Debug("unhandled channel, dropping envelope")
		}
	}
}

func (c *Client) forwardTyped(session string, env models.Envelope, kind bus.MessageKind, payload any) {
	if len(env.Data) == 0 {
		return
	}
	if err := json.Unmarshal(env.Data, payload); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"channel": env.Channel, "session": session}).Warn("failed to decode envelope payload")
		return
	}
	c.bus.SendMessage(bus.Message{Kind: kind, Session: session, Payload: payload})
}

// forwardTicker decodes a ticker push, feeds it to the simulator (if
// simulation is active, so market orders have a price to fill against),
// and forwards it to the bus like any other typed payload.
func (c *Client) forwardTicker(session string, env models.Envelope) {
	if len(env.Data) == 0 {
		return
	}
	var data models.TickerData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"channel": env.Channel, "session": session}).Warn("failed to decode envelope payload")
		return
	}
	if c.sim != nil {
		c.sim.observeTicker(data)
	}
	c.bus.SendMessage(bus.Message{Kind: bus.MessageTicker, Session: session, Payload: &data})
}

func (c *Client) forwardBook(session string, env models.Envelope) {
	var data []models.BookData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"session": session}).Warn("failed to decode book payload")
		return
	}
	for i := range data {
		c.bus.SendMessage(bus.Message{
			Kind:    bus.MessageBook,
			Symbol:  data[i].Symbol,
			Session: session,
			Payload: bus.BookUpdate{Type: env.Type, Book: data[i]},
		})
	}
}

func (c *Client) forwardTradeList(session string, env models.Envelope) {
	var data []models.TradeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"session": session}).Warn("failed to decode trade payload")
		return
	}
	for i := range data {
		c.bus.SendMessage(bus.Message{Kind: bus.MessageTrade, Symbol: data[i].Symbol, Session: session, Payload: data[i]})
	}
}

func (c *Client) forwardExecutionList(session string, env models.Envelope) {
	var data []models.ExecutionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		c.log.WithError(err).WithFields(logger.Fields{"session": session}).Warn("failed to decode execution payload")
		return
	}
	for i := range data {
		c.bus.SendMessage(bus.Message{Kind: bus.MessageExecution, Symbol: data[i].Symbol, Session: session, Payload: data[i]})
	}
}
