// Package net connects a session to the PenQuest gateway. A Transport moves
// JSON frames; the inbound interpreter turns received frames into parsed
// messages for the session, and the outbound interpreter forwards the
// session's send events to the transport.
package net

import (
	"context"
	"errors"

	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

// ErrTransportClosed is returned once a transport is closed.
var ErrTransportClosed = errors.New("transport closed")

// Transport moves protocol frames to and from the gateway.
type Transport interface {
	// ReadFrame blocks for the next inbound frame.
	ReadFrame(ctx context.Context) (*protocol.Incoming, error)
	// WriteFrame sends one outbound frame.
	WriteFrame(ctx context.Context, out protocol.Outgoing) error
	Close() error
}

// Pipe is an in-memory transport for tests and local drivers: frames pushed
// with Deliver come out of ReadFrame, frames written with WriteFrame can be
// read back with Sent.
type Pipe struct {
	in   chan *protocol.Incoming
	out  chan protocol.Outgoing
	done chan struct{}
}

// NewPipe returns a pipe with the given buffer size per direction.
func NewPipe(buffer int) *Pipe {
	return &Pipe{
		in:   make(chan *protocol.Incoming, buffer),
		out:  make(chan protocol.Outgoing, buffer),
		done: make(chan struct{}),
	}
}

// Deliver queues one frame for ReadFrame.
func (p *Pipe) Deliver(frame *protocol.Incoming) {
	select {
	case p.in <- frame:
	case <-p.done:
	}
}

// Sent returns the channel of frames written to the pipe.
func (p *Pipe) Sent() <-chan protocol.Outgoing { return p.out }

func (p *Pipe) ReadFrame(ctx context.Context) (*protocol.Incoming, error) {
	select {
	case frame := <-p.in:
		return frame, nil
	case <-p.done:
		return nil, ErrTransportClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipe) WriteFrame(ctx context.Context, out protocol.Outgoing) error {
	select {
	case p.out <- out:
		return nil
	case <-p.done:
		return ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipe) Close() error {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	return nil
}
