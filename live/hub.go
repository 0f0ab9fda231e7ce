// Package live pushes store change notifications to open views, either as Go
// channel subscriptions or over websocket connections.
package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/garcom-app/utils"
)

// Event types
const (
	EventTablesChanged   = "tables_changed"
	EventItemsChanged    = "items_changed"
	EventProductsChanged = "products_changed"
	EventTick            = "tick"
)

const writeWait = 2 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Notifier is what services need to announce committed changes.
type Notifier interface {
	Publish(msg Message)
}

type Hub struct {
	mutex   sync.Mutex
	clients map[*websocket.Conn]bool
	subs    map[int]chan Message
	nextID  int
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		subs:    make(map[int]chan Message),
	}
}

// Subscribe returns a channel receiving every published message and a cancel
// function that closes it.
func (h *Hub) Subscribe(buffer int) (<-chan Message, func()) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Message, buffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mutex.Lock()
			defer h.mutex.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) RegisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = true
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish does not wait on readers: a subscriber whose buffer is full misses
// the message, and a websocket client that cannot take it within writeWait is
// dropped.
func (h *Hub) Publish(msg Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			utils.InfoLogger.Warnf("live: subscriber %d is full, dropping %s", id, msg.Event)
		}
	}

	if len(h.clients) == 0 {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("live: marshal %s: %v", msg.Event, err)
		return
	}
	deadline := time.Now().Add(writeWait)
	for conn := range h.clients {
		if err := writeClient(conn, data, deadline); err != nil {
			utils.ErrorLogger.Printf("live: dropping client %s: %v", conn.RemoteAddr(), err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func writeClient(conn *websocket.Conn, data []byte, deadline time.Time) error {
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// PublishAll is a convenience for services that touched several collections.
func PublishAll(n Notifier, events ...string) {
	if n == nil {
		return
	}
	for _, e := range events {
		n.Publish(Message{Event: e})
	}
}

func logWatchError(event string, err error) {
	utils.ErrorLogger.Printf("live: re-read after %s: %v", event, err)
}
