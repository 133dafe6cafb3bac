package session

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/OCharnyshevich/beta14core/internal/protocol"
)

func newTestPair(t *testing.T) (*Session, net.Conn) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { clientConn.Close() })

	log := slog.New(slog.DiscardHandler)
	s := New(context.Background(), serverConn, log)
	t.Cleanup(func() { s.Close(nil) })
	return s, clientConn
}

func TestReadLoopDecodesHandshake(t *testing.T) {
	s, client := newTestPair(t)

	pkt := &protocol.HandshakeSB{ProtocolVersion: 14, Username: "Notch", Host: "localhost", Port: 25565}
	data, err := protocol.Encode(pkt)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	go func() {
		client.Write(data)
	}()

	select {
	case msg := <-s.Inbound():
		if msg.Err != nil {
			t.Fatalf("inbound error: %v", msg.Err)
		}
		got, ok := msg.Packet.(*protocol.HandshakeSB)
		if !ok {
			t.Fatalf("got %T, want *protocol.HandshakeSB", msg.Packet)
		}
		if got.Username != "Notch" || got.Port != 25565 {
			t.Errorf("decoded mismatch: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound packet")
	}
}

func TestReadLoopHandlesSplitWrites(t *testing.T) {
	s, client := newTestPair(t)
	s.SetState(protocol.Play)

	pkt := &protocol.ChatSB{Message: "hello world"}
	data, err := protocol.Encode(pkt)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	go func() {
		for _, b := range data {
			client.Write([]byte{b})
			time.Sleep(time.Millisecond)
		}
	}()

	select {
	case msg := <-s.Inbound():
		if msg.Err != nil {
			t.Fatalf("inbound error: %v", msg.Err)
		}
		got, ok := msg.Packet.(*protocol.ChatSB)
		if !ok {
			t.Fatalf("got %T, want *protocol.ChatSB", msg.Packet)
		}
		if got.Message != "hello world" {
			t.Errorf("Message = %q", got.Message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for split-write packet")
	}
}

func TestSendWritesToClient(t *testing.T) {
	s, client := newTestPair(t)

	s.Send(&protocol.DisconnectCB{Reason: "server closed"})

	buf := make([]byte, 128)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("client Read: %v", err)
	}

	got, consumed, err := protocol.Decode(buf[:n], protocol.Play)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if consumed != n {
		t.Fatalf("consumed %d, want %d", consumed, n)
	}
	disc, ok := got.(*protocol.DisconnectSB)
	if !ok {
		t.Fatalf("got %T", got)
	}
	if disc.Reason != "server closed" {
		t.Errorf("Reason = %q", disc.Reason)
	}
}

func TestKeepAliveOverdue(t *testing.T) {
	s, _ := newTestPair(t)

	if s.KeepAliveOverdue(time.Second) {
		t.Fatal("should not be overdue before any keep-alive sent")
	}

	s.KeepAlive()
	if s.KeepAliveOverdue(time.Hour) {
		t.Fatal("should not be overdue immediately")
	}

	s.AckKeepAlive()
	if s.KeepAliveOverdue(0) {
		t.Fatal("should not be overdue once acked")
	}
}
