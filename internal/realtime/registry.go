// Package realtime keeps store rooms of connected clients and fans menu
// events out to them.
package realtime

import (
	"sort"
	"sync"

	"github.com/Lixing-Zhang/stall-backend/internal/models"
	"github.com/google/uuid"
)

// Handle is one connected client. Emit must not block: a handle that cannot
// take the event returns an error and simply misses it.
type Handle interface {
	ID() string
	Emit(event models.BroadcastEvent) error
}

// Subscription is the token returned by Subscribe. It has to be presented to
// Unsubscribe to leave that room.
type Subscription struct {
	Token    string
	StoreID  string
	HandleID string
}

type member struct {
	handle Handle
	token  string
	seq    uint64
}

// Registry maps store identifiers to the handles subscribed to them.
// All membership state sits behind a single RWMutex so a publish always reads
// a complete set.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]*member // storeID -> handleID -> member
	byHandle map[string]map[string]string  // handleID -> storeID -> token
	nextSeq  uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[string]*member),
		byHandle: make(map[string]map[string]string),
	}
}

// Subscribe adds h to the room of storeID, creating the room on first use.
// Subscribing twice returns the original subscription.
func (r *Registry) Subscribe(storeID string, h Handle) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	handleID := h.ID()
	room, ok := r.rooms[storeID]
	if !ok {
		room = make(map[string]*member)
		r.rooms[storeID] = room
	}

	if m, exists := room[handleID]; exists {
		return Subscription{Token: m.token, StoreID: storeID, HandleID: handleID}
	}

	r.nextSeq++
	m := &member{handle: h, token: uuid.NewString(), seq: r.nextSeq}
	room[handleID] = m

	joined, ok := r.byHandle[handleID]
	if !ok {
		joined = make(map[string]string)
		r.byHandle[handleID] = joined
	}
	joined[storeID] = m.token

	return Subscription{Token: m.token, StoreID: storeID, HandleID: handleID}
}

// Unsubscribe removes the subscription from its room. It reports false when
// the token does not match a current subscription.
func (r *Registry) Unsubscribe(sub Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[sub.StoreID]
	if !ok {
		return false
	}
	m, ok := room[sub.HandleID]
	if !ok || m.token != sub.Token {
		return false
	}

	r.removeLocked(sub.StoreID, sub.HandleID)
	return true
}

// Disconnect removes h from every room it joined.
func (r *Registry) Disconnect(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handleID := h.ID()
	for storeID := range r.byHandle[handleID] {
		r.removeLocked(storeID, handleID)
	}
	delete(r.byHandle, handleID)
}

// removeLocked drops one membership and prunes empty rooms. Caller holds mu.
func (r *Registry) removeLocked(storeID, handleID string) {
	if room, ok := r.rooms[storeID]; ok {
		delete(room, handleID)
		if len(room) == 0 {
			delete(r.rooms, storeID)
		}
	}

	if joined, ok := r.byHandle[handleID]; ok {
		delete(joined, storeID)
		if len(joined) == 0 {
			delete(r.byHandle, handleID)
		}
	}
}

// Snapshot returns the handles of a room in subscription order.
func (r *Registry) Snapshot(storeID string) []Handle {
	r.mu.RLock()
	room := r.rooms[storeID]
	members := make([]*member, 0, len(room))
	for _, m := range room {
		members = append(members, m)
	}
	r.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool { return members[i].seq < members[j].seq })

	handles := make([]Handle, len(members))
	for i, m := range members {
		handles[i] = m.handle
	}
	return handles
}

// RoomSize returns the number of handles in a room
func (r *Registry) RoomSize(storeID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[storeID])
}

// Rooms returns the size of every non-empty room keyed by store identifier
func (r *Registry) Rooms() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sizes := make(map[string]int, len(r.rooms))
	for storeID, room := range r.rooms {
		sizes[storeID] = len(room)
	}
	return sizes
}

// StoresOf returns the stores a handle is currently subscribed to
func (r *Registry) StoresOf(h Handle) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	joined := r.byHandle[h.ID()]
	stores := make([]string, 0, len(joined))
	for storeID := range joined {
		stores = append(stores, storeID)
	}
	return stores
}
