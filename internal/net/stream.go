package net

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/seresheim/penquest-pkgs/internal/protocol"
)

// Stream is a transport over any byte stream carrying newline-delimited
// JSON frames, such as a TCP connection to a local gateway relay.
type Stream struct {
	rwc io.ReadWriteCloser
	dec *json.Decoder

	wmu sync.Mutex
	enc *json.Encoder

	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps a byte stream in a frame transport.
func NewStream(rwc io.ReadWriteCloser) *Stream {
	return &Stream{
		rwc: rwc,
		dec: json.NewDecoder(rwc),
		enc: json.NewEncoder(rwc),
	}
}

func (s *Stream) ReadFrame(ctx context.Context) (*protocol.Incoming, error) {
	var frame protocol.Incoming
	if err := s.dec.Decode(&frame); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
			return nil, ErrTransportClosed
		}
		return nil, err
	}
	return &frame, nil
}

func (s *Stream) WriteFrame(ctx context.Context, out protocol.Outgoing) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.enc.Encode(out)
}

func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}
