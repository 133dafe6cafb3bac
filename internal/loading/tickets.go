// Package loading sits above chunkstore and turns "who wants this chunk
// loaded" into actual Acquire/Release calls: a chunk stays loaded exactly
// as long as at least one ticket references it, and a chunk's last ticket
// disappearing is what lets chunkstore's own unload-delay timer start.
package loading

import (
	"context"
	"fmt"
	"sync"

	"github.com/OCharnyshevich/beta14core/internal/chunkstore"
	"github.com/OCharnyshevich/beta14core/internal/world"
)

// Ticket identifies whoever is keeping a chunk loaded — currently always a
// player's entity id, but kept as its own type in case a future non-player
// reason to hold a chunk loaded (a pending explosion, a scheduled
// world-edit) needs one too.
type Ticket int64

type chunkEntry struct {
	handle  *world.ChunkHandle
	tickets map[Ticket]struct{}
}

// Manager tracks, per chunk, which tickets are keeping it loaded. It holds
// exactly one chunkstore reference per chunk with at least one ticket —
// additional tickets on an already-loaded chunk are bookkeeping only, not
// additional Acquire calls.
type Manager struct {
	store *chunkstore.Store

	mu       sync.Mutex
	chunks   map[world.ChunkPos]*chunkEntry
	byTicket map[Ticket]map[world.ChunkPos]struct{}
}

// NewManager creates a Manager backed by store.
func NewManager(store *chunkstore.Store) *Manager {
	return &Manager{
		store:    store,
		chunks:   make(map[world.ChunkPos]*chunkEntry),
		byTicket: make(map[Ticket]map[world.ChunkPos]struct{}),
	}
}

// AddTicket ensures pos is loaded on ticket's behalf, returning its handle.
// Calling AddTicket again with the same ticket and pos is a harmless no-op.
func (m *Manager) AddTicket(ctx context.Context, ticket Ticket, pos world.ChunkPos) (*world.ChunkHandle, error) {
	m.mu.Lock()
	entry, ok := m.chunks[pos]
	if ok {
		if _, already := entry.tickets[ticket]; already {
			h := entry.handle
			m.mu.Unlock()
			return h, nil
		}
		entry.tickets[ticket] = struct{}{}
		m.trackByTicket(ticket, pos)
		h := entry.handle
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	h, err := m.store.Acquire(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("loading: acquire %s: %w", pos, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, raced := m.chunks[pos]; raced {
		// Another goroutine won the race to create the first ticket for
		// pos between our unlock and this Acquire completing; release the
		// handle we just pulled and join the winner's entry instead.
		m.store.Release(pos)
		existing.tickets[ticket] = struct{}{}
		m.trackByTicket(ticket, pos)
		return existing.handle, nil
	}
	m.chunks[pos] = &chunkEntry{handle: h, tickets: map[Ticket]struct{}{ticket: {}}}
	m.trackByTicket(ticket, pos)
	return h, nil
}

func (m *Manager) trackByTicket(ticket Ticket, pos world.ChunkPos) {
	set, ok := m.byTicket[ticket]
	if !ok {
		set = map[world.ChunkPos]struct{}{}
		m.byTicket[ticket] = set
	}
	set[pos] = struct{}{}
}

// RemoveTicket drops ticket's claim on pos. If it was the last ticket, the
// chunk is released back to chunkstore, which starts its own unload-delay
// timer (cancelled automatically if a new ticket arrives before it fires).
func (m *Manager) RemoveTicket(ticket Ticket, pos world.ChunkPos) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeTicketLocked(ticket, pos)
}

func (m *Manager) removeTicketLocked(ticket Ticket, pos world.ChunkPos) {
	entry, ok := m.chunks[pos]
	if !ok {
		return
	}
	delete(entry.tickets, ticket)
	if set, ok := m.byTicket[ticket]; ok {
		delete(set, pos)
		if len(set) == 0 {
			delete(m.byTicket, ticket)
		}
	}
	if len(entry.tickets) == 0 {
		delete(m.chunks, pos)
		m.store.Release(pos)
	}
}

// RemoveAllTickets drops every chunk claim held by ticket (a player
// disconnecting, or any other ticket holder being removed), returning the
// chunk positions that lost their last ticket as a result.
func (m *Manager) RemoveAllTickets(ticket Ticket) []world.ChunkPos {
	m.mu.Lock()
	defer m.mu.Unlock()

	positions := m.byTicket[ticket]
	if len(positions) == 0 {
		return nil
	}
	var unloaded []world.ChunkPos
	for pos := range positions {
		before := len(m.chunks[pos].tickets)
		m.removeTicketLocked(ticket, pos)
		if before == 1 {
			unloaded = append(unloaded, pos)
		}
	}
	return unloaded
}

// NumTickets reports how many tickets currently reference pos.
func (m *Manager) NumTickets(pos world.ChunkPos) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.chunks[pos]
	if !ok {
		return 0
	}
	return len(entry.tickets)
}

// IsLoaded reports whether pos currently has at least one ticket (and is
// therefore guaranteed resident, not just cached in chunkstore's
// unused-but-not-yet-evicted window).
func (m *Manager) IsLoaded(pos world.ChunkPos) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.chunks[pos]
	return ok
}
