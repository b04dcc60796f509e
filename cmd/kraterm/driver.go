package main

import (
	"context"
	"time"

	"kraterm/internal/agentbridge"
	"kraterm/internal/auth"
	"kraterm/internal/bus"
	"kraterm/internal/creds"
	"kraterm/internal/risk"
	"kraterm/internal/rpc"
	"kraterm/internal/state"
	"kraterm/logger"
	"kraterm/models"
)

// runDriver is the single consumer of the event bus: it folds every
// message into state, fans a subset of them out to the agent subprocess,
// and carries out whatever Action the reducer asks for. It is the only
// caller of state.Update, matching the reducer's requirement that state
// have exactly one writer.
func runDriver(
	ctx context.Context,
	b *bus.Bus,
	s *state.State,
	client *rpc.Client,
	agent *agentbridge.Handle,
	guard *risk.Guard,
	authMgr *auth.Manager,
	credHandle *creds.Handle,
	log *logger.Log,
	symbols []string,
	bookDepth int,
	agentLimitsPath string,
) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-b.Messages():
			if !ok {
				return
			}

			fanOutToAgent(agent, msg)

			if msg.Kind == bus.MessageConnStatus {
				handleConnStatus(ctx, client, authMgr, log, symbols, bookDepth, msg)
			}

			action, has := state.Update(s, msg)
			if !has || action == nil {
				continue
			}
			dispatchAction(ctx, b, client, agent, guard, authMgr, credHandle, log, agentLimitsPath, action)
		}
	}
}

// handleConnStatus reissues the full active subscription set whenever a
// session reports "connected", whether that is the initial connect or any
// later reconnect. This is the only subscription trigger for both public
// and private channels; there is no separate one-shot startup path.
func handleConnStatus(ctx context.Context, client *rpc.Client, authMgr *auth.Manager, log *logger.Log, symbols []string, bookDepth int, msg bus.Message) {
	upd, ok := msg.Payload.(bus.ConnStatusUpdate)
	if !ok || upd.Status != "connected" {
		return
	}
	switch upd.Session {
	case "public":
		go subscribePublicChannels(ctx, client, symbols, bookDepth, log)
	case "private":
		go subscribePrivateChannels(ctx, client, authMgr, log)
	}
}

// subscribePublicChannels re-issues the book, ticker, and trade
// subscriptions for every configured symbol. Called on every successful
// public (re)connect so a dropped connection never leaves the session
// silently unsubscribed.
func subscribePublicChannels(ctx context.Context, client *rpc.Client, symbols []string, bookDepth int, log *logger.Log) {
	subCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.SubscribeBook(subCtx, symbols, bookDepth); err != nil {
		log.WithError(err).Warn("book subscription failed")
	}
	if err := client.SubscribeTicker(subCtx, symbols); err != nil {
		log.WithError(err).Warn("ticker subscription failed")
	}
	if err := client.SubscribeTrade(subCtx, symbols); err != nil {
		log.WithError(err).Warn("trade subscription failed")
	}
}

// fanOutToAgent forwards the subset of bus messages the agent subprocess
// cares about before/alongside the reducer sees them; only state.Update
// is allowed to mutate state.
func fanOutToAgent(agent *agentbridge.Handle, msg bus.Message) {
	switch msg.Kind {
	case bus.MessageTicker:
		if t, ok := msg.Payload.(*models.TickerData); ok {
			agent.SendTicker(*t)
		}
	case bus.MessageTrade:
		if t, ok := msg.Payload.(models.TradeData); ok {
			agent.SendTrades([]models.TradeData{t})
		}
	case bus.MessageExecution:
		if e, ok := msg.Payload.(models.ExecutionData); ok {
			agent.SendExecutions([]models.ExecutionData{e})
		}
	case bus.MessageBalance:
		if bal, ok := msg.Payload.(*models.BalanceData); ok {
			agent.SendBalances([]models.BalanceData{*bal})
		}
	case bus.MessageTokenState:
		if st, ok := msg.Payload.(auth.State); ok {
			agent.SendTokenState(string(st))
		}
	}
}

func dispatchAction(
	ctx context.Context,
	b *bus.Bus,
	client *rpc.Client,
	agent *agentbridge.Handle,
	guard *risk.Guard,
	authMgr *auth.Manager,
	credHandle *creds.Handle,
	log *logger.Log,
	agentLimitsPath string,
	action *state.Action,
) {
	switch action.Kind {
	case state.ActionResyncBook:
		b.SendCommand(bus.ConnectionCommand{Kind: bus.CommandResync, Symbol: action.Symbol})
	case state.ActionSubscribe:
		go subscribeChannel(ctx, client, action, log)
	case state.ActionUnsubscribe:
		go func() {
			if err := client.Unsubscribe(ctx, action.Channel, []string{action.Symbol}); err != nil {
				log.WithError(err).WithFields(logger.Fields{"symbol": action.Symbol}).Warn("unsubscribe failed")
			}
		}()
	case state.ActionPlaceOrder:
		go placeOrder(ctx, client, guard, agent, authMgr, action, log)
	case state.ActionCancelOrder:
		go cancelOrder(ctx, client, agent, authMgr, action, log)
	case state.ActionUpdateCredentials:
		credHandle.Replace(creds.Credentials{APIKey: action.NewAPIKey, APISecret: action.NewAPISecret})
		b.SendCommand(bus.ConnectionCommand{Kind: bus.CommandCredentialsUpdated})
	case state.ActionUpdateRiskLimit:
		updateRiskLimit(guard, agentLimitsPath, action, log)
	case state.ActionSendAgentMessage:
		agent.SendUserMessage(action.Text)
	}
}

// updateRiskLimit applies an operator's edit of one advisory risk field
// for a symbol and persists the whole config to disk, so the change
// survives a restart and the agent's own overlay reads back what it
// just wrote.
func updateRiskLimit(guard *risk.Guard, path string, action *state.Action, log *logger.Log) {
	cfg := guard.Config()
	if err := cfg.SetOverrideField(action.Symbol, action.RiskField, action.RiskValue); err != nil {
		log.WithError(err).WithFields(logger.Fields{"symbol": action.Symbol, "field": action.RiskField}).Warn("risk limit edit rejected")
		return
	}
	guard.SetConfig(cfg)
	if err := risk.SaveAgentLimits(path, cfg); err != nil {
		log.WithError(err).Warn("failed to persist agent risk limits")
	}
}

func subscribeChannel(ctx context.Context, client *rpc.Client, action *state.Action, log *logger.Log) {
	var err error
	switch action.Channel {
	case models.ChannelBook:
		err = client.SubscribeBook(ctx, []string{action.Symbol}, 25)
	case models.ChannelTicker:
		err = client.SubscribeTicker(ctx, []string{action.Symbol})
	case models.ChannelTrade:
		err = client.SubscribeTrade(ctx, []string{action.Symbol})
	}
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"symbol": action.Symbol, "channel": string(action.Channel)}).Warn("subscribe failed")
	}
}

// subscribePrivateChannels re-issues the executions and balances
// subscriptions. Called on every successful private (re)connect, so a
// token refresh or reconnect after a transient drop always ends with
// working private data rather than a stale one-time subscription.
func subscribePrivateChannels(ctx context.Context, client *rpc.Client, authMgr *auth.Manager, log *logger.Log) {
	if authMgr == nil {
		return
	}
	token := authMgr.Snapshot().Token
	if err := client.SubscribeExecutions(ctx, token); err != nil {
		log.WithError(err).Warn("executions subscription failed")
	}
	if err := client.SubscribeBalances(ctx, token); err != nil {
		log.WithError(err).Warn("balances subscription failed")
	}
}

func placeOrder(ctx context.Context, client *rpc.Client, guard *risk.Guard, agent *agentbridge.Handle, authMgr *auth.Manager, action *state.Action, log *logger.Log) {
	params := action.AddOrder
	if authMgr != nil {
		params.Token = models.RedactedToken(authMgr.Snapshot().Token)
	}

	verdict, err := guard.CheckOrder(params)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"symbol": params.Symbol}).Warn("order rejected by risk guard")
		agent.SendOrderResponse(false, "", params.ClOrdID, err.Error())
		return
	}
	if verdict == risk.RequiresConfirmation {
		log.WithFields(logger.Fields{"symbol": params.Symbol}).Warn("order requires operator confirmation, refusing to auto-submit")
		agent.SendOrderResponse(false, "", params.ClOrdID, "order requires operator confirmation")
		return
	}

	result, err := client.PlaceOrder(ctx, params)
	if err != nil {
		agent.SendOrderResponse(false, "", params.ClOrdID, err.Error())
		return
	}
	guard.RecordSubmission(params.Symbol)
	agent.SendOrderResponse(true, result.OrderID, result.ClOrdID, "")
}

func cancelOrder(ctx context.Context, client *rpc.Client, agent *agentbridge.Handle, authMgr *auth.Manager, action *state.Action, log *logger.Log) {
	token := ""
	if authMgr != nil {
		token = authMgr.Snapshot().Token
	}
	resp, err := client.CancelOrder(ctx, token, action.CancelOrder)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"symbol": action.Symbol}).Warn("cancel order failed")
		agent.SendOrderResponse(false, "", "", err.Error())
		return
	}
	agent.SendOrderResponse(resp.Success, "", "", resp.Error)
}
