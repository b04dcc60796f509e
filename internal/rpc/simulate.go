package rpc

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"kraterm/internal/errs"
	"kraterm/models"
)

// defaultTakerFeeRate mirrors the exchange's taker fee (0.26%), so a
// simulated fill's realized P&L is priced the same way a live one would
// be.
var defaultTakerFeeRate = decimal.NewFromFloat(0.0026)

// simulator fills orders locally against the last observed ticker price
// instead of sending them to the exchange, for paper-trading against
// live market data. Callers receive the same AddOrderResult/ExecutionData
// shapes a real fill would produce, so nothing downstream needs to know
// simulation is active.
type simulator struct {
	mu sync.Mutex

	nextOrderID uint64
	feeRate     decimal.Decimal

	positions   map[string]decimal.Decimal
	avgEntry    map[string]decimal.Decimal
	realizedPnL decimal.Decimal

	lastTicker map[string]models.TickerData
}

func newSimulator() *simulator {
	return &simulator{
		feeRate:    defaultTakerFeeRate,
		positions:  make(map[string]decimal.Decimal),
		avgEntry:   make(map[string]decimal.Decimal),
		lastTicker: make(map[string]models.TickerData),
	}
}

// observeTicker records the latest ticker for a symbol, the price source
// simulated market orders fill against.
func (s *simulator) observeTicker(t models.TickerData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTicker[t.Symbol] = t
}

// placeOrder fills params immediately against the last known ticker,
// returning the result and execution report a real add_order/executions
// push pair would produce, or an error if there is no ticker to fill
// against or the order needs a limit price it does not have.
func (s *simulator) placeOrder(params models.AddOrderParams) (*models.AddOrderResult, *models.ExecutionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticker, ok := s.lastTicker[params.Symbol]
	if !ok {
		return nil, nil, errs.New(errs.User, "rpc.simulate", fmt.Errorf("no ticker data for %s", params.Symbol))
	}

	fillPrice, ok := determineFillPrice(params, ticker)
	if !ok {
		return nil, nil, errs.New(errs.User, "rpc.simulate", fmt.Errorf("cannot fill %s %s order without a limit price", params.OrderType, params.Side))
	}

	s.nextOrderID++
	orderID := fmt.Sprintf("SIM-%d", s.nextOrderID)
	if params.ClOrdID == "" {
		params.ClOrdID = fmt.Sprintf("sim-cl-%d", s.nextOrderID)
	}

	cost := params.OrderQty.Mul(fillPrice)
	fee := cost.Mul(s.feeRate)
	realized := s.updatePosition(params.Symbol, params.Side, params.OrderQty, fillPrice)
	s.realizedPnL = s.realizedPnL.Add(realized).Sub(fee)

	result := &models.AddOrderResult{OrderID: orderID, ClOrdID: params.ClOrdID}

	exec := &models.ExecutionData{
		OrderID:     orderID,
		ClOrdID:     params.ClOrdID,
		Symbol:      params.Symbol,
		Side:        string(params.Side),
		OrderType:   string(params.OrderType),
		OrderQty:    params.OrderQty,
		OrderStatus: "filled",
		ExecType:    "trade",
		AvgPrice:    &fillPrice,
		LastPrice:   &fillPrice,
		LastQty:     &params.OrderQty,
		CumQty:      &params.OrderQty,
		Cost:        &cost,
		Fees:        []models.Fee{{Asset: "fee", Qty: fee}},
	}

	return result, exec, nil
}

// determineFillPrice picks the price a market order crosses the spread
// at, or the order's own limit price if it is a limit order.
func determineFillPrice(params models.AddOrderParams, ticker models.TickerData) (decimal.Decimal, bool) {
	if params.OrderType == models.OrderTypeMarket {
		if params.Side == models.SideBuy {
			return ticker.Ask, true
		}
		return ticker.Bid, true
	}
	if params.LimitPrice != nil {
		return *params.LimitPrice, true
	}
	return decimal.Decimal{}, false
}

// updatePosition applies a fill to the running position and average
// entry price for symbol, returning the realized P&L this fill closed
// (zero if it only added to an existing position).
func (s *simulator) updatePosition(symbol string, side models.OrderSide, qty, price decimal.Decimal) decimal.Decimal {
	signedQty := qty
	if side == models.SideSell {
		signedQty = qty.Neg()
	}

	pos := s.positions[symbol]
	entry := s.avgEntry[symbol]
	newPos := pos.Add(signedQty)

	realized := decimal.Zero
	switch {
	case pos.IsZero() || pos.Sign() == signedQty.Sign():
		// Opening or adding to a position: extend the average entry price.
		totalCost := entry.Mul(pos.Abs()).Add(price.Mul(signedQty.Abs()))
		if !newPos.IsZero() {
			s.avgEntry[symbol] = totalCost.Div(newPos.Abs())
		}
	default:
		// Reducing or flipping a position: realize P&L on the closed portion.
		closedQty := decimal.Min(pos.Abs(), signedQty.Abs())
		if pos.Sign() > 0 {
			realized = price.Sub(entry).Mul(closedQty)
		} else {
			realized = entry.Sub(price).Mul(closedQty)
		}
		if newPos.Sign() != pos.Sign() && !newPos.IsZero() {
			s.avgEntry[symbol] = price
		}
	}

	s.positions[symbol] = newPos
	return realized
}
