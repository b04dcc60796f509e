package rpc

import (
	"context"
	"fmt"

	"kraterm/internal/errs"
	"kraterm/models"
)

// SubscribeBook subscribes to the book channel for the given symbols at
// depth over the public session and waits for the exchange's ack.
func (c *Client) SubscribeBook(ctx context.Context, symbols []string, depth int) error {
	reqID := c.reqIDs.Next()
	req := models.NewBookSubscribeRequest(symbols, depth, reqID)
	return c.awaitSubscribeAck(ctx, false, reqID, req)
}

// SubscribeTicker subscribes to the ticker channel for the given symbols
// over the public session.
func (c *Client) SubscribeTicker(ctx context.Context, symbols []string) error {
	reqID := c.reqIDs.Next()
	req := models.NewSubscribeRequest(models.ChannelTicker, symbols, reqID)
	return c.awaitSubscribeAck(ctx, false, reqID, req)
}

// SubscribeTrade subscribes to the trade channel for the given symbols
// over the public session.
func (c *Client) SubscribeTrade(ctx context.Context, symbols []string) error {
	reqID := c.reqIDs.Next()
	req := models.NewSubscribeRequest(models.ChannelTrade, symbols, reqID)
	return c.awaitSubscribeAck(ctx, false, reqID, req)
}

// SubscribeExecutions subscribes to the authenticated executions channel
// over the private session using the current auth token.
func (c *Client) SubscribeExecutions(ctx context.Context, token string) error {
	reqID := c.reqIDs.Next()
	req := models.NewExecutionsSubscribeRequest(token, reqID)
	return c.awaitSubscribeAck(ctx, true, reqID, req)
}

// SubscribeBalances subscribes to the authenticated balances channel over
// the private session using the current auth token.
func (c *Client) SubscribeBalances(ctx context.Context, token string) error {
	reqID := c.reqIDs.Next()
	req := models.NewBalancesSubscribeRequest(token, reqID)
	return c.awaitSubscribeAck(ctx, true, reqID, req)
}

// Unsubscribe removes an existing subscription for channel/symbols over
// the public session and waits for the exchange's ack.
func (c *Client) Unsubscribe(ctx context.Context, channel models.Channel, symbols []string) error {
	reqID := c.reqIDs.Next()
	req := models.NewUnsubscribeRequest(channel, symbols, reqID)
	return c.awaitSubscribeAck(ctx, false, reqID, req)
}

func (c *Client) awaitSubscribeAck(ctx context.Context, private bool, reqID uint64, req any) error {
	env, err := c.call(ctx, private, reqID, req)
	if err != nil {
		return err
	}
	if env.Success != nil && !*env.Success {
		return errs.New(errs.ProtocolParse, "rpc.Subscribe", fmt.Errorf("subscribe rejected: %s", env.Error))
	}
	return nil
}
