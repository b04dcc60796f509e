package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"kraterm/internal/bus"
	"kraterm/internal/errs"
	"kraterm/models"
)

// PlaceOrder submits an add_order request over the private session and
// waits for the exchange's response. If params.ClOrdID is empty, a
// random one is generated so the caller can always correlate the
// eventual execution report even if the response is lost.
func (c *Client) PlaceOrder(ctx context.Context, params models.AddOrderParams) (*models.AddOrderResult, error) {
	if params.ClOrdID == "" {
		params.ClOrdID = uuid.NewString()
	}

	if c.sim != nil {
		result, exec, err := c.sim.placeOrder(params)
		if err != nil {
			return nil, err
		}
		c.bus.SendMessage(bus.Message{Kind: bus.MessageExecution, Symbol: exec.Symbol, Payload: *exec})
		return result, nil
	}

	reqID := c.reqIDs.Next()
	req := models.NewAddOrderRequest(params, reqID)

	env, err := c.call(ctx, true, reqID, req)
	if err != nil {
		return nil, err
	}

	var resp models.AddOrderResponse
	if err := json.Unmarshal(env.Result, &resp); err != nil {
		return nil, errs.New(errs.ProtocolParse, "rpc.PlaceOrder", err)
	}
	if !resp.Success {
		return nil, errs.New(errs.User, "rpc.PlaceOrder", fmt.Errorf("add_order rejected: %s", resp.Error))
	}
	return resp.Result, nil
}

// CancelOrder submits a cancel_order request for one or more order IDs
// over the private session and waits for the exchange's response.
func (c *Client) CancelOrder(ctx context.Context, token string, orderIDs []string) (*models.CancelOrderResponse, error) {
	if c.sim != nil {
		// Simulated orders fill the instant they are placed, so there is
		// never anything left resting to cancel.
		return &models.CancelOrderResponse{Method: "cancel_order", Success: true}, nil
	}

	reqID := c.reqIDs.Next()
	req := models.NewCancelOrderRequest(token, orderIDs, reqID)

	env, err := c.call(ctx, true, reqID, req)
	if err != nil {
		return nil, err
	}

	var resp models.CancelOrderResponse
	if err := json.Unmarshal(env.Result, &resp); err != nil {
		return nil, errs.New(errs.ProtocolParse, "rpc.CancelOrder", err)
	}
	if !resp.Success {
		return nil, errs.New(errs.User, "rpc.CancelOrder", fmt.Errorf("cancel_order rejected: %s", resp.Error))
	}
	return &resp, nil
}
