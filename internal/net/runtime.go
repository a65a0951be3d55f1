package net

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/bus"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

// Client wires a transport, a bus and a session together and runs both
// interpreters. One Client plays one game.
type Client struct {
	Session *session.Session

	id        string
	transport Transport
	bus       *bus.Bus
	log       *zap.Logger
	errs      chan error
	cancel    context.CancelFunc
}

// NewClient assembles a client on the given transport. Call Start before
// using the session's command surface.
func NewClient(t Transport, opts session.Options, log *zap.Logger) *Client {
	id := uuid.NewString()
	log = log.With(zap.String("client_id", id))
	b := bus.New()
	return &Client{
		Session:   session.New(b, log, opts),
		id:        id,
		transport: t,
		bus:       b,
		log:       log,
		errs:      make(chan error, 2),
	}
}

// Dial connects to the gateway over websocket and assembles a client on the
// connection.
func Dial(ctx context.Context, url string, opts session.Options, log *zap.Logger) (*Client, error) {
	transport, err := DialWebSocket(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewClient(transport, opts, log), nil
}

// ID is the locally generated client id used to correlate log lines.
func (c *Client) ID() string { return c.id }

// Start launches the inbound and outbound interpreters.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	inbound := NewInbound(c.transport, c.Session, c.log)
	outbound := NewOutbound(c.transport, c.bus, c.log)
	go func() { c.errs <- inbound.Run(ctx) }()
	go func() { c.errs <- outbound.Run(ctx) }()
}

// Err blocks until one interpreter stops and returns its error.
func (c *Client) Err() error {
	return <-c.errs
}

// Close tears the client down: the session sends its close frame, the
// transport shuts and the interpreters stop.
func (c *Client) Close() {
	c.Session.Close()
	// Give the outbound interpreter a moment to deliver the close frame
	// before cutting the context.
	select {
	case err := <-c.errs:
		if err != nil {
			c.log.Debug("interpreter stopped", zap.Error(err))
		}
	case <-time.After(time.Second):
	}
	c.transport.Close()
	if c.cancel != nil {
		c.cancel()
	}
}
