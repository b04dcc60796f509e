package wsconn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kraterm/internal/bus"
	"kraterm/logger"
	"kraterm/models"
)

// EnvelopeHandler decodes and routes a single pushed message. It is
// called from the session's read goroutine, so it must not block.
type EnvelopeHandler func(sessionName string, env models.Envelope)

// Manager supervises the public and private sessions: it reconnects each
// independently using cause-based backoff, and reacts to commands
// (forced resync, credentials rotation, shutdown) delivered over the
// bus.
type Manager struct {
	publicURL  string
	privateURL string

	heartbeatTimeout time.Duration

	tokenFn func() string

	handler EnvelopeHandler

	bus *bus.Bus

	log *logger.Entry

	mu      sync.RWMutex
	public  *Session
	private *Session

	wg sync.WaitGroup
}

// New builds a connection Manager. tokenFn is polled each time the
// private session (re)connects and must return the empty string if no
// valid token is currently available, in which case the private session
// connection attempt is deferred.
func New(publicURL, privateURL string, heartbeatTimeout time.Duration, tokenFn func() string, handler EnvelopeHandler, b *bus.Bus) *Manager {
	return &Manager{
		publicURL:        publicURL,
		privateURL:       privateURL,
		heartbeatTimeout: heartbeatTimeout,
		tokenFn:          tokenFn,
		handler:          handler,
		bus:              b,
		log:              logger.GetLogger().WithComponent("wsconn"),
	}
}

// Run starts both session supervisors and the command-consuming loop,
// blocking until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.superviseSession(ctx, "public", func() bool { return true })
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.superviseSession(ctx, "private", func() bool { return m.tokenFn() != "" })
	}()

	m.consumeCommands(ctx)
	m.wg.Wait()
}

func (m *Manager) consumeCommands(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-m.bus.Commands():
			if !ok {
				return
			}
			m.handleCommand(cmd)
		}
	}
}

func (m *Manager) handleCommand(cmd bus.ConnectionCommand) {
	switch cmd.Kind {
	case bus.CommandResync:
		m.sendResync(cmd.Symbol)
	case bus.CommandTokenExpired:
		m.closeSessionWithCause("private", CauseTokenExpired)
	case bus.CommandCredentialsUpdated:
		m.closeSessionWithCause("private", CauseCredentialsUpdated)
	case bus.CommandShutdown:
		m.closeSessionWithCause("public", CauseShutdown)
		m.closeSessionWithCause("private", CauseShutdown)
	}
}

// sendResync implements the resync protocol: unsubscribe immediately
// followed by subscribe at depth 25 for the symbol, on the same public
// session, so the exchange replies with a fresh snapshot.
func (m *Manager) sendResync(symbol string) {
	sess := m.sessionByName("public")
	if sess == nil {
		return
	}
	unsub := models.NewUnsubscribeRequest(models.ChannelBook, []string{symbol}, 0)
	if err := sess.Send(unsub); err != nil {
		m.log.WithError(err).WithFields(logger.Fields{"symbol": symbol}).Warn("resync unsubscribe failed")
	}
	sub := models.NewBookSubscribeRequest([]string{symbol}, int(models.BookDepth25), 0)
	if err := sess.Send(sub); err != nil {
		m.log.WithError(err).WithFields(logger.Fields{"symbol": symbol}).Warn("resync subscribe failed")
	}
}

func (m *Manager) sessionByName(name string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if name == "public" {
		return m.public
	}
	return m.private
}

func (m *Manager) closeSession(name string) {
	sess := m.sessionByName(name)
	if sess != nil {
		sess.close()
	}
}

// closeSessionWithCause tears down the named session, if connected, and
// tags the read loop's resulting exit with cause so the supervisor picks
// the right backoff strategy for a deliberate close rather than
// treating it as a generic read error.
func (m *Manager) closeSessionWithCause(name string, cause Cause) {
	sess := m.sessionByName(name)
	if sess != nil {
		sess.closeWithCause(cause)
	}
}

// superviseSession owns the reconnect loop for one named session,
// waiting on ready() before each connection attempt (used by the
// private session to wait for a valid auth token).
func (m *Manager) superviseSession(ctx context.Context, name string, ready func() bool) {
	retry := 0
	defer m.publishStatus(name, "disconnected", 0)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !ready() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
				continue
			}
		}

		m.publishStatus(name, "connecting", retry)

		sess := NewSession(name, m.urlFor(name), m.heartbeatTimeout, func(env models.Envelope) {
			m.handler(name, env)
		})
		m.setSession(name, sess)

		if err := sess.Connect(ctx); err != nil {
			m.log.WithError(err).WithSession(name).Warn("connect failed")
			delay := backoffFor(CauseReadError, retry)
			retry++
			m.publishStatus(name, "reconnecting", retry)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		if err := m.subscribeInitial(name, sess); err != nil {
			m.log.WithError(err).WithSession(name).Warn("initial subscribe failed")
		}

		retry = 0
		m.publishStatus(name, "connected", 0)
		endCause := sess.Run(ctx)
		m.setSession(name, nil)

		if endCause == CauseShutdown {
			return
		}

		delay := backoffFor(endCause, retry)
		retry++
		m.publishStatus(name, "reconnecting", retry)
		m.log.WithSession(name).WithFields(logger.Fields{"cause": string(endCause), "delay": delay.String()}).Warn("session ended, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// publishStatus pushes a connection status transition onto the bus for
// the state reducer to fold in. Status is kept as a plain string
// (see bus.ConnStatusUpdate) rather than importing internal/state's
// ConnectionStatus type, to avoid a package import cycle.
func (m *Manager) publishStatus(session, status string, attempt int) {
	m.bus.SendMessage(bus.Message{
		Kind:    bus.MessageConnStatus,
		Session: session,
		Payload: bus.ConnStatusUpdate{Session: session, Status: status, Attempt: attempt},
	})
}

// subscribeInitial sends a ping immediately after connecting to confirm
// liveness. It intentionally does not carry channel subscriptions: those
// are reissued by the driver in response to the "connected" status this
// supervise loop publishes below, so they are repeated identically on
// every reconnect rather than sent once here.
func (m *Manager) subscribeInitial(name string, sess *Session) error {
	return sess.Send(models.NewPingRequest(0))
}

func (m *Manager) urlFor(name string) string {
	if name == "public" {
		return m.publicURL
	}
	return m.privateURL
}

func (m *Manager) setSession(name string, sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "public" {
		m.public = sess
	} else {
		m.private = sess
	}
}

// SendPublic writes a request over the public session, if connected.
func (m *Manager) SendPublic(v any) error {
	sess := m.sessionByName("public")
	if sess == nil {
		return errNotConnected("public")
	}
	return sess.Send(v)
}

// SendPrivate writes a request over the private session, if connected.
func (m *Manager) SendPrivate(v any) error {
	sess := m.sessionByName("private")
	if sess == nil {
		return errNotConnected("private")
	}
	return sess.Send(v)
}

func errNotConnected(name string) error {
	return fmt.Errorf("wsconn: %s session not connected", name)
}
