package notify

import "sync"

// Conn is the write side of one relay channel. gofiber websocket
// connections satisfy it; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
}

// SyncConn serializes writes to a single underlying channel. Websocket
// connections allow only one concurrent writer, while Push runs on
// whichever request goroutine happens to dispatch, so every registered
// websocket must go through this wrapper.
type SyncConn struct {
	mu sync.Mutex
	c  Conn
}

func NewSyncConn(c Conn) *SyncConn {
	return &SyncConn{c: c}
}

func (s *SyncConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.WriteJSON(v)
}

// Hub owns the mapping from authenticated user IDs to their open relay
// channels. A user may hold several channels at once (multiple tabs or
// devices). Construct one Hub per process in main and pass it by reference;
// there is no package-level instance.
type Hub struct {
	mu    sync.RWMutex
	conns map[uint]map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]map[Conn]struct{}),
	}
}

// Register adds a channel for the given user.
func (h *Hub) Register(userID uint, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[userID]
	if !ok {
		set = make(map[Conn]struct{})
		h.conns[userID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes a channel. Safe to call for channels that were never
// registered or were already removed.
func (h *Hub) Unregister(userID uint, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, userID)
	}
}

// Push writes payload to every open channel of the given user and returns
// the number of successful writes. Channels that fail to write are dropped
// from the registry; the client reconnects on its next page load.
func (h *Hub) Push(userID uint, payload interface{}) int {
	h.mu.RLock()
	set := h.conns[userID]
	channels := make([]Conn, 0, len(set))
	for c := range set {
		channels = append(channels, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range channels {
		if err := c.WriteJSON(payload); err != nil {
			h.Unregister(userID, c)
			continue
		}
		sent++
	}
	return sent
}

// Connected returns the number of open channels for the given user.
func (h *Hub) Connected(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
