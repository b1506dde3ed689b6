package liveevents

import (
	"errors"
	"strings"
	"sync"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// RoomRecommitted announces that a room's persisted count set was replaced.
// Screens showing aggregate stock, low-stock warnings or last-counted
// timestamps subscribe to know when to refresh.
type RoomRecommitted struct {
	RoomID        string   `json:"room_id"`
	ItemIDs       []string `json:"item_ids"`
	RowsPersisted int      `json:"rows_persisted"`
	CommittedAt   string   `json:"committed_at"`
}

// Hub fans recommit events out to org-scoped subscribers with a bounded
// replay buffer.
type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []RoomRecommitted
	subs   map[uint64]chan RoomRecommitted
	nextID uint64
}

type Subscription struct {
	hub   *Hub
	orgID string
	id    uint64
	ch    chan RoomRecommitted
	once  sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

func (h *Hub) Publish(orgID string, event RoomRecommitted) {
	if h == nil {
		return
	}
	org := strings.TrimSpace(orgID)
	if org == "" {
		return
	}
	h.mu.RLock()
	stream := h.streams[org]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan RoomRecommitted, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	// Slow subscribers are skipped, never blocked on.
	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Subscribe(orgID string) (*Subscription, []RoomRecommitted, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	org := strings.TrimSpace(orgID)
	if org == "" {
		return nil, nil, errors.New("invalid_org")
	}

	stream := h.ensureStream(org)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan RoomRecommitted)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan RoomRecommitted, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]RoomRecommitted(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub:   h,
		orgID: org,
		id:    id,
		ch:    ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(orgID string) *stream {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.streams[orgID]
	if !ok {
		s = &stream{}
		h.streams[orgID] = s
	}
	return s
}

// Events returns the subscriber's channel.
func (s *Subscription) Events() <-chan RoomRecommitted {
	if s == nil {
		return nil
	}
	return s.ch
}

// Close detaches the subscriber from the hub.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.hub.mu.RLock()
		stream := s.hub.streams[s.orgID]
		s.hub.mu.RUnlock()
		if stream == nil {
			return
		}
		stream.mu.Lock()
		delete(stream.subs, s.id)
		stream.mu.Unlock()
	})
}
