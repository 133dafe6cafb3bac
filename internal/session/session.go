// Package session drives a single client connection: a reader goroutine
// decodes packets off the socket, a writer goroutine serializes outbound
// packets onto it, and the two communicate with the rest of the server
// exclusively through channels. No lock is held across a network call.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

// Inbound is one decoded packet handed from the reader goroutine to
// whatever owns the Session (the login handshake inline, then the entity
// store's packet-ingest system once the session reaches Play).
type Inbound struct {
	Packet protocol.Packet
	Err    error
}

// Session owns one TCP connection end to end. Exported fields are safe to
// read after construction; mutable state lives behind the state machine or
// is only ever touched from one of the two goroutines Session starts.
type Session struct {
	conn net.Conn
	log  *slog.Logger

	state atomic.Int32 // protocol.State, accessed from both goroutines

	in  chan Inbound
	out chan protocol.Packet

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error

	lastKeepAliveSent atomic.Int64 // unix nanos
	keepAliveAcked    atomic.Bool
}

// New wraps conn and starts its reader/writer goroutines. The caller
// remains responsible for eventually calling Close.
func New(ctx context.Context, conn net.Conn, log *slog.Logger) *Session {
	s := &Session{
		conn:   conn,
		log:    log.With("addr", conn.RemoteAddr().String()),
		in:     make(chan Inbound, 64),
		out:    make(chan protocol.Packet, 256),
		closed: make(chan struct{}),
	}
	s.state.Store(int32(protocol.Handshake))
	s.keepAliveAcked.Store(true)

	go s.readLoop(ctx)
	go s.writeLoop(ctx)

	return s
}

// State reports the protocol state packets are currently decoded under.
func (s *Session) State() protocol.State {
	return protocol.State(s.state.Load())
}

// SetState advances the decoder to a new protocol state. Only ever called
// by the handshake/login sequence and on transition into Play.
func (s *Session) SetState(st protocol.State) {
	s.state.Store(int32(st))
}

// Inbound exposes the channel of decoded packets (or decode errors) for the
// owner to range over.
func (s *Session) Inbound() <-chan Inbound {
	return s.in
}

// Send queues p for the writer goroutine. Send never blocks on the network;
// it blocks only while the outbound buffer itself is full, until the writer
// frees a slot or the session closes.
func (s *Session) Send(p protocol.Packet) {
	select {
	case s.out <- p:
	case <-s.closed:
	}
}

// Closed reports a channel that is closed once the session has torn down,
// for callers that want to select on connection lifetime.
func (s *Session) Closed() <-chan struct{} {
	return s.closed
}

// Close tears the connection down exactly once, returning the first error
// (if any) observed by either goroutine.
func (s *Session) Close(cause error) error {
	s.closeOnce.Do(func() {
		s.closeErr = cause
		close(s.closed)
		s.conn.Close()
	})
	return s.closeErr
}

// readLoop decodes packets off the socket into a growing buffer, handing
// each complete packet to in. protocol.Decode's short-buffer contract means
// a partial read at the tail of buf is never misinterpreted as a malformed
// packet — it's simply left for the next Read to complete.
func (s *Session) readLoop(ctx context.Context) {
	defer close(s.in)
	defer s.Close(nil)

	r := bufio.NewReaderSize(s.conn, 32*1024)
	var buf []byte
	chunk := make([]byte, 8*1024)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		default:
		}

		for {
			pkt, n, err := protocol.Decode(buf, s.State())
			if err == protocol.ErrShortBuffer {
				break
			}
			if err != nil {
				s.in <- Inbound{Err: fmt.Errorf("decode: %w", err)}
				return
			}
			buf = buf[n:]
			select {
			case s.in <- Inbound{Packet: pkt}:
			case <-s.closed:
				return
			}
		}

		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.in <- Inbound{Err: fmt.Errorf("read: %w", err)}
			}
			return
		}
	}
}

// writeLoop serializes queued packets onto the socket one at a time,
// logging and tearing down the session on the first write error.
func (s *Session) writeLoop(ctx context.Context) {
	defer s.Close(nil)

	w := bufio.NewWriterSize(s.conn, 32*1024)
	flush := time.NewTicker(20 * time.Millisecond)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case p, ok := <-s.out:
			if !ok {
				return
			}
			data, err := protocol.Encode(p)
			if err != nil {
				s.log.Error("encode packet", "id", fmt.Sprintf("0x%02X", p.PacketID()), "err", err)
				continue
			}
			if _, err := w.Write(data); err != nil {
				s.log.Debug("write packet", "err", err)
				return
			}
		case <-flush.C:
			if err := w.Flush(); err != nil {
				s.log.Debug("flush", "err", err)
				return
			}
		}
	}
}

// KeepAlive sends a keep-alive and records the send time so the owning
// loop can disconnect a client that never responds.
func (s *Session) KeepAlive() {
	s.lastKeepAliveSent.Store(time.Now().UnixNano())
	s.keepAliveAcked.Store(false)
	s.Send(&protocol.KeepAlive{})
}

// AckKeepAlive marks the outstanding keep-alive answered.
func (s *Session) AckKeepAlive() {
	s.keepAliveAcked.Store(true)
}

// KeepAliveOverdue reports whether the client has gone longer than timeout
// without acknowledging the last keep-alive.
func (s *Session) KeepAliveOverdue(timeout time.Duration) bool {
	if s.keepAliveAcked.Load() {
		return false
	}
	sent := time.Unix(0, s.lastKeepAliveSent.Load())
	return time.Since(sent) > timeout
}
