package net

import (
	"context"

	"go.uber.org/zap"

	"github.com/seresheim/penquest-pkgs/internal/bus"
	"github.com/seresheim/penquest-pkgs/internal/protocol"
	"github.com/seresheim/penquest-pkgs/internal/session"
)

// Outbound claims the session's send events and writes them to the
// transport.
type Outbound struct {
	transport Transport
	bus       *bus.Bus
	log       *zap.Logger
}

// NewOutbound returns an outbound interpreter for the given transport and
// bus.
func NewOutbound(t Transport, b *bus.Bus, log *zap.Logger) *Outbound {
	return &Outbound{transport: t, bus: b, log: log}
}

// Run forwards send events until a close frame is sent or ctx is done.
func (o *Outbound) Run(ctx context.Context) error {
	ch, cancel := o.bus.Listen(session.EventSend)
	defer cancel()

	for {
		select {
		case d := <-ch:
			out, ok := d.Payload.(protocol.Outgoing)
			if !ok {
				o.log.Warn("dropping send event with unexpected payload",
					zap.Any("payload", d.Payload))
				continue
			}
			if out.Close {
				o.log.Debug("closing transport")
				return o.transport.Close()
			}
			if err := o.transport.WriteFrame(ctx, out); err != nil {
				return err
			}
			o.log.Debug("frame sent", zap.String("event", out.Event), zap.String("kind", string(out.Kind)))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
