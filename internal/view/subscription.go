package view

import (
	"context"
	"fmt"

	"github.com/OCharnyshevich/beta14core/internal/level"
	"github.com/OCharnyshevich/beta14core/internal/loading"
	"github.com/OCharnyshevich/beta14core/internal/protocol"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// DefaultViewDistance is the radius, in chunks, around a player's current
// chunk that stays loaded and visible — a 9x9 column square, matching the
// client's own default render distance for this protocol version.
const DefaultViewDistance = 4

// Sender is the subset of session.Session that Subscription needs; kept
// as an interface so tests can exercise Update without a real connection.
type Sender interface {
	Send(protocol.Packet)
}

// Subscription tracks one player's current View and drives the
// load/unload ticket churn and chunk packets that follow a view change.
// It plays the role the reference server's per-client WaitingChunks/
// ViewUpdateEvent pair plays, simplified because this chunkstore's
// Acquire already blocks until a chunk is ready — there is no separate
// "still loading, deliver later" path to track.
type Subscription struct {
	ticket  loading.Ticket
	level   *level.Level
	current View
}

// New starts tracking a player identified by ticket (typically their
// entity id) against lvl, with no chunks loaded yet.
func New(ticket loading.Ticket, lvl *level.Level) *Subscription {
	return &Subscription{ticket: ticket, level: lvl, current: Empty()}
}

// View returns the subscription's current view.
func (s *Subscription) View() View {
	return s.current
}

// Move recomputes the view around newCenter and sends the resulting
// load/unload packets to out, acquiring and releasing loading tickets for
// the chunks that enter and leave view. It is a no-op if newCenter and
// viewDistance both match the current view. The returned Update is what actually changed,
// for callers that drive a ViewUpdateEvent off of it.
func (s *Subscription) Move(ctx context.Context, out Sender, newCenter world.ChunkPos, viewDistance int32) (Update, error) {
	newView := View{Center: newCenter, ViewDistance: viewDistance}
	if newView == s.current {
		return Update{Old: s.current, New: newView}, nil
	}
	update := NewUpdate(s.current, newView)

	for _, pos := range update.Load {
		h, err := s.level.Tickets().AddTicket(ctx, s.ticket, pos)
		if err != nil {
			return Update{}, fmt.Errorf("view: load %s: %w", pos, err)
		}
		var pre *protocol.PreChunkCB
		var data *protocol.MapChunkCB
		h.Read(func(c *world.Chunk) {
			pre, data, err = EncodeChunk(c)
		})
		if err != nil {
			return Update{}, fmt.Errorf("view: encode %s: %w", pos, err)
		}
		out.Send(pre)
		out.Send(data)
	}

	for _, pos := range update.Unload {
		out.Send(EncodeUnloadChunk(pos))
		s.level.Tickets().RemoveTicket(s.ticket, pos)
	}

	s.current = newView
	return update, nil
}

// Close releases every chunk ticket this subscription holds, for a player
// disconnecting or changing dimension.
func (s *Subscription) Close() {
	s.level.Tickets().RemoveAllTickets(s.ticket)
	s.current = Empty()
}
