// Package rpc correlates outbound subscribe/add_order/cancel_order calls
// with their response envelopes, and routes uncorrelated pushes (book
// updates, executions, balances, and the rest of the streamed channels)
// onto the event bus for the state reducer to consume.
package rpc

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"kraterm/internal/bus"
	"kraterm/internal/errs"
	"kraterm/logger"
	"kraterm/models"
)

// requestsPerSecond caps how fast the client issues subscribe/order
// requests against the exchange, independent of how fast the state
// reducer produces Actions that call into it.
const requestsPerSecond = 10

// sender is the subset of wsconn.Manager the client needs, kept narrow so
// tests can supply a fake.
type sender interface {
	SendPublic(v any) error
	SendPrivate(v any) error
}

// Client issues subscribe and trading requests over a connection Manager
// and dispatches pushed envelopes to the bus.
type Client struct {
	sender  sender
	bus     *bus.Bus
	reqIDs  reqIDSource
	limiter *rate.Limiter
	sim     *simulator

	mu      sync.Mutex
	pending map[uint64]chan models.Envelope

	log *logger.Entry
}

// NewClient builds a Client. sender is normally a *wsconn.Manager. When
// simulate is true, PlaceOrder/CancelOrder fill locally against the last
// observed ticker instead of reaching the exchange, for paper trading.
func NewClient(sender sender, b *bus.Bus, simulate bool) *Client {
	c := &Client{
		sender:  sender,
		bus:     b,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		pending: make(map[uint64]chan models.Envelope),
		log:     logger.GetLogger().WithComponent("rpc"),
	}
	if simulate {
		c.sim = newSimulator()
	}
	return c
}

// Handle is a wsconn.EnvelopeHandler: it resolves correlated responses to
// their waiting caller and forwards everything else to the bus.
func (c *Client) Handle(session string, env models.Envelope) {
	if env.ReqID != nil {
		if waiter, ok := c.takeWaiter(*env.ReqID); ok {
			waiter <- env
			return
		}
	}
	c.forward(session, env)
}

func (c *Client) registerWaiter(reqID uint64) chan models.Envelope {
	ch := make(chan models.Envelope, 1)
	c.mu.Lock()
	c.pending[reqID] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) takeWaiter(reqID uint64) (chan models.Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.pending[reqID]
	if ok {
		delete(c.pending, reqID)
	}
	return ch, ok
}

func (c *Client) abandonWaiter(reqID uint64) {
	c.mu.Lock()
	delete(c.pending, reqID)
	c.mu.Unlock()
}

// call sends req over the named session and waits for the correlated
// response or ctx cancellation.
func (c *Client) call(ctx context.Context, private bool, reqID uint64, req any) (models.Envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.Envelope{}, errs.New(errs.Transient, "rpc.call", err)
	}

	waiter := c.registerWaiter(reqID)

	var err error
	if private {
		err = c.sender.SendPrivate(req)
	} else {
		err = c.sender.SendPublic(req)
	}
	if err != nil {
		c.abandonWaiter(reqID)
		return models.Envelope{}, errs.New(errs.Transient, "rpc.call", err)
	}

	select {
	case env := <-waiter:
		return env, nil
	case <-ctx.Done():
		c.abandonWaiter(reqID)
		return models.Envelope{}, errs.New(errs.Transient, "rpc.call", ctx.Err())
	}
}
