package display

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one connected customer display screen.
type Client struct {
	Conn  *websocket.Conn
	Send  chan []byte
	Store string
}

type broadcastMsg struct {
	Store string
	Data  []byte
}

// Hub fans cart events out to every display registered for a store.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Store] == nil {
				h.rooms[c.Store] = make(map[*Client]bool)
			}
			h.rooms[c.Store][c] = true
			h.mu.Unlock()
			setPresence(c.Store, h.Count(c.Store))

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.rooms[c.Store]; conns != nil {
				if conns[c] {
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()
			setPresence(c.Store, h.Count(c.Store))

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Store] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.Store], c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

// Count reports how many displays are connected for a store.
func (h *Hub) Count(store string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[store])
}
