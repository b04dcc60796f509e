// Package agentbridge spawns and supervises the agent subprocess and
// bridges its stdin/stdout/stderr to the event bus over line-delimited
// JSON, mirroring the three-task shape (stdout reader, stderr reader,
// stdin writer) of a cooperating pipe bridge.
package agentbridge

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kraterm/internal/bus"
	"kraterm/internal/metrics"
	"kraterm/logger"
	"kraterm/models"
)

// defaultOutputLineCeiling is the line ceiling used when NewHandle is
// given no positive value. Reaching the ceiling only logs a debug line;
// every later stdout line is still forwarded (the bus itself is the
// buffer).
const defaultOutputLineCeiling = 500

// Handle owns one running agent subprocess, its two reader goroutines
// (stdout, stderr), and the mutex-guarded writer for its stdin.
type Handle struct {
	command []string
	throttle time.Duration
	lineCeiling int

	bus *bus.Bus
	log *logger.Entry

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   *bufio.Writer
	running bool

	lastTickerSent map[string]time.Time

	wg sync.WaitGroup
}

// NewHandle builds a Handle for the given command (argv[0] plus args).
func NewHandle(command []string, throttle time.Duration, lineCeiling int, b *bus.Bus) *Handle {
	if lineCeiling <= 0 {
		lineCeiling = defaultOutputLineCeiling
	}
	return &Handle{
		command:        command,
		throttle:       throttle,
		lineCeiling:    lineCeiling,
		bus:            b,
		log:            logger.GetLogger().WithComponent("agentbridge"),
		lastTickerSent: make(map[string]time.Time),
	}
}

// Start spawns the subprocess and its pump goroutines, blocking until ctx
// is cancelled or the process exits on its own.
func (h *Handle) Start(ctx context.Context) error {
	if len(h.command) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, h.command[0], h.command[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		logger.IncrementAgentExit()
		metrics.IncrementAgentExit()
		return err
	}

	h.mu.Lock()
	h.cmd = cmd
	h.stdin = bufio.NewWriter(stdinPipe)
	h.running = true
	h.mu.Unlock()

	h.wg.Add(2)
	go h.readStdout(stdout)
	go h.readStderr(stderr)

	// Wait closes the pipes, so both readers must drain them first.
	h.wg.Wait()
	err = cmd.Wait()

	h.mu.Lock()
	h.running = false
	h.mu.Unlock()

	h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentExited})
	logger.IncrementAgentExit()
	metrics.IncrementAgentExit()

	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (h *Handle) readStdout(r io.Reader) {
	defer h.wg.Done()
	scanner := bufio.NewScanner(r)
	lines := 0
	for scanner.Scan() {
		line := scanner.Text()
		var in Inbound
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			h.log.WithError(err).WithFields(logger.Fields{"raw": line}).Warn("failed to decode agent stdout line")
			continue
		}
		h.dispatch(in)
		lines++
		if lines == h.lineCeiling {
			h.log.WithFields(logger.Fields{"lines": lines}).Debug("agent output line ceiling reached")
		}
	}
}

func (h *Handle) readStderr(r io.Reader) {
	defer h.wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		h.bus.SendMessage(bus.Message{
			Kind:    bus.MessageAgentOutput,
			Payload: "[stderr] " + scanner.Text(),
		})
	}
}

func (h *Handle) dispatch(in Inbound) {
	switch in.Type {
	case InboundReady:
		h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentReady})
	case InboundOutput:
		h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentOutput, Payload: in.Line})
	case InboundError:
		h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentOutput, Payload: "[error] " + in.Message})
	case InboundStreamDelta:
		h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentOutput, Payload: in.Delta})
	case InboundStreamEnd:
		// Marks the end of one streamed response; the output panel has
		// already received every delta, so there is nothing left to fold.
	case InboundTokenUsage:
		h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentTokenUse, Payload: models.AgentTokenUsage{
			InputTokens:  in.InputTokens,
			OutputTokens: in.OutputTokens,
		}})
	case InboundPlaceOrder, InboundCancelOrder:
		h.bus.SendMessage(bus.Message{Kind: bus.MessageAgentDecision, Symbol: in.Symbol, Payload: toDecision(in)})
	default:
		h.log.WithFields(logger.Fields{"type": string(in.Type)}).Debug("unrecognized agent message type")
	}
}

func toDecision(in Inbound) models.AgentDecision {
	d := models.AgentDecision{
		Type:      string(in.Type),
		Symbol:    in.Symbol,
		Side:      in.Side,
		OrderType: in.OrderType,
		OrderID:   in.OrderID,
		ClOrdID:   in.ClOrdID,
	}
	if in.Qty != "" {
		if q, err := decimal.NewFromString(in.Qty); err == nil {
			d.Qty = &q
		}
	}
	if in.Price != "" {
		if p, err := decimal.NewFromString(in.Price); err == nil {
			d.LimitPrice = &p
		}
	}
	return d
}

// Stop signals a graceful shutdown line before the caller cancels the
// process's context.
func (h *Handle) Stop() {
	h.writeLine(Outbound{Type: OutboundShutdown})
}

func (h *Handle) writeLine(out Outbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running || h.stdin == nil {
		return nil
	}
	if _, err := h.stdin.Write(append(data, '\n')); err != nil {
		return err
	}
	return h.stdin.Flush()
}

// SendTicker forwards a throttled ticker snapshot, at most once per
// throttle interval per symbol.
func (h *Handle) SendTicker(t models.TickerData) {
	h.mu.Lock()
	last, ok := h.lastTickerSent[t.Symbol]
	now := time.Now()
	if ok && now.Sub(last) < h.throttle {
		h.mu.Unlock()
		return
	}
	h.lastTickerSent[t.Symbol] = now
	h.mu.Unlock()

	h.writeLine(Outbound{Type: OutboundTicker, Ticker: &t})
}

// SendTrades forwards public trade prints unchanged.
func (h *Handle) SendTrades(trades []models.TradeData) {
	h.writeLine(Outbound{Type: OutboundTrade, Trades: trades})
}

// SendActivePairs tells the agent which symbols the connection manager
// currently tracks, so it does not act on a symbol nobody is watching.
func (h *Handle) SendActivePairs(symbols []string) {
	h.writeLine(Outbound{Type: OutboundActivePairs, Pairs: symbols})
}

// SendExecutions forwards unsolicited execution updates unchanged.
func (h *Handle) SendExecutions(execs []models.ExecutionData) {
	h.writeLine(Outbound{Type: OutboundExecution, Executions: execs})
}

// SendBalances forwards balance changes.
func (h *Handle) SendBalances(balances []models.BalanceData) {
	h.writeLine(Outbound{Type: OutboundBalance, Balances: balances})
}

// SendTokenState notifies the agent whether order submission is
// currently possible.
func (h *Handle) SendTokenState(state string) {
	h.writeLine(Outbound{Type: OutboundTokenState, State: state})
}

// SendUserMessage forwards free text the operator typed into the input
// field straight to the agent subprocess.
func (h *Handle) SendUserMessage(content string) {
	h.writeLine(Outbound{Type: OutboundUserMessage, Content: content})
}

// SendOrderResponse relays the structured result of an order placement
// attempt back to the agent that requested it.
func (h *Handle) SendOrderResponse(success bool, orderID, clOrdID, errMsg string) {
	h.writeLine(Outbound{Type: OutboundOrderResponse, Success: success, OrderID: orderID, ClOrdID: clOrdID, Error: errMsg})
}
