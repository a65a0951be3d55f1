package net

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/protocol"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

// Inbound reads frames from the transport, parses them against the message
// schemas and hands them to the session.
type Inbound struct {
	transport Transport
	sess      *session.Session
	log       *zap.Logger
}

// NewInbound returns an inbound interpreter for the given transport and
// session.
func NewInbound(t Transport, sess *session.Session, log *zap.Logger) *Inbound {
	return &Inbound{transport: t, sess: sess, log: log}
}

// Run loops until the transport closes or ctx is done. Each parsed message
// is handled on its own goroutine: a handler may block waiting for another
// message to establish the phase it needs, and must not stall the read
// loop while it does.
func (i *Inbound) Run(ctx context.Context) error {
	for {
		frame, err := i.transport.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, ErrTransportClosed) {
				return nil
			}
			if errors.Is(err, protocol.ErrBadEnvelope) {
				i.log.Warn("dropping malformed frame", zap.Error(err))
				continue
			}
			return err
		}
		i.interpret(ctx, frame)
	}
}

func (i *Inbound) interpret(ctx context.Context, frame *protocol.Incoming) {
	if frame.Event == "" {
		i.log.Warn("dropping frame without event name")
		return
	}
	if !protocol.Known(frame.Event) {
		i.log.Warn("unknown event received",
			zap.String("event", frame.Event), zap.Any("data", frame.Data))
		return
	}
	data := frame.Data
	if data == nil {
		data = map[string]any{}
	}
	msg, err := protocol.Parse(frame.Event, data)
	if err != nil {
		i.log.Warn("dropping unparsable frame",
			zap.String("event", frame.Event), zap.Error(err))
		return
	}

	i.log.Debug("handling message", zap.String("event", frame.Event))
	go func() {
		if err := i.sess.Handle(ctx, msg); err != nil {
			i.log.Error("message handling failed",
				zap.String("event", frame.Event), zap.Error(err))
		}
	}()
}
