package wsconn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kraterm/internal/errs"
	"kraterm/internal/metrics"
	"kraterm/logger"
	"kraterm/models"
)

// Session owns a single WebSocket connection to one of the exchange's
// two v2 endpoints (public or private). It is single-use: once its read
// loop exits, the owning supervisor discards it and creates a new one.
type Session struct {
	Name string
	url  string

	dialer websocket.Dialer

	mu         sync.RWMutex
	conn       *websocket.Conn
	closeCause Cause

	writeMu sync.Mutex

	heartbeatTimeout time.Duration

	onEnvelope func(models.Envelope)

	log *logger.Entry
}

// NewSession builds a Session for the given named endpoint (used only
// for logging and metrics dimensions).
func NewSession(name, url string, heartbeatTimeout time.Duration, onEnvelope func(models.Envelope)) *Session {
	return &Session{
		Name:             name,
		url:              url,
		dialer:           websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		heartbeatTimeout: heartbeatTimeout,
		onEnvelope:       onEnvelope,
		log:              logger.GetLogger().WithComponent("wsconn").WithSession(name),
	}
}

// Connect dials the endpoint and stores the resulting connection.
func (s *Session) Connect(ctx context.Context) error {
	header := make(http.Header)
	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return errs.New(errs.Transient, "wsconn.Connect", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	logger.IncrementReconnect()
	metrics.IncrementReconnect(s.Name)
	s.log.Info("session connected")
	return nil
}

// Send writes v to the connection as a single JSON text frame.
func (s *Session) Send(v any) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return errs.New(errs.Transient, "wsconn.Send", fmt.Errorf("session %s not connected", s.Name))
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errs.New(errs.ProtocolParse, "wsconn.Send", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errs.New(errs.Transient, "wsconn.Send", err)
	}
	return nil
}

// Run reads frames until the connection errors, the heartbeat deadline
// lapses, or ctx is cancelled, decoding each as an Envelope and handing
// it to onEnvelope. It returns the Cause the supervisor should use to
// pick a reconnect strategy.
func (s *Session) Run(ctx context.Context) Cause {
	defer s.close()

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.close()
	}()
	defer close(done)

	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return CauseReadError
		}

		conn.SetReadDeadline(time.Now().Add(s.heartbeatTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return CauseShutdown
			}
			if netErrIsTimeout(err) {
				s.log.Warn("heartbeat timeout, no frames received within window")
				return CauseHeartbeatTimeout
			}
			if cause := s.takeCloseCause(); cause != "" {
				s.log.WithFields(logger.Fields{"cause": string(cause)}).Info("session closed deliberately")
				return cause
			}
			s.log.WithError(err).Warn("read error, session ending")
			return CauseReadError
		}

		var env models.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.WithError(err).WithFields(logger.Fields{"raw": string(data)}).Warn("failed to decode envelope")
			continue
		}
		if s.onEnvelope != nil {
			s.onEnvelope(env)
		}
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// closeWithCause tears down the connection the way close does, but
// records cause first so the read loop's next error is reported as
// cause instead of the generic CauseReadError. Used when the manager or
// auth lifecycle deliberately wants this session gone, e.g. after a
// credentials update or an imminent token expiry.
func (s *Session) closeWithCause(cause Cause) {
	s.mu.Lock()
	s.closeCause = cause
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (s *Session) takeCloseCause() Cause {
	s.mu.Lock()
	defer s.mu.Unlock()
	cause := s.closeCause
	s.closeCause = ""
	return cause
}

type timeoutError interface {
	Timeout() bool
}

func netErrIsTimeout(err error) bool {
	te, ok := err.(timeoutError)
	return ok && te.Timeout()
}
