// Package realtime fans committed changes out to connected dashboards over
// WebSocket and, optionally, to other server instances through Redis.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"road_treatment/internal/worker"
)

const (
	TicketCreated   = "ticket_created"
	TicketUpdated   = "ticket_updated"
	TicketDeleted   = "ticket_deleted"
	TruckCreated    = "truck_created"
	TruckUpdated    = "truck_updated"
	TruckDeleted    = "truck_deleted"
	MaterialUpdated = "material_updated"
	UserCreated     = "user_created"
	UserUpdated     = "user_updated"
	UserDeleted     = "user_deleted"
)

const broadcastBuffer = 100

// ErrTooManyClients is returned by Register when the hub is at capacity.
var ErrTooManyClients = errors.New("too many realtime clients")

// Envelope is the wire shape of every event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Publisher is what command handlers depend on.
type Publisher interface {
	Publish(event string, payload interface{})
}

// Forwarder receives every locally published event, for cross-instance relay.
type Forwarder interface {
	Forward(env Envelope)
}

// Hub tracks connected clients and broadcasts events to all of them.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	stop       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
	writers    *worker.Pool
	forwarder  Forwarder
	maxClients int
	queueSize  int
}

// NewHub starts the broadcast loop. Each client's writer runs on writers, so
// the pool size bounds concurrent connections too.
func NewHub(writers *worker.Pool, maxClients, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 64
	}
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		stop:       make(chan struct{}),
		writers:    writers,
		maxClients: maxClients,
		queueSize:  queueSize,
	}
	go h.run()
	return h
}

// SetForwarder installs the cross-instance relay. Call before serving traffic.
func (h *Hub) SetForwarder(f Forwarder) {
	h.forwarder = f
}

func (h *Hub) run() {
	for {
		select {
		case <-h.stop:
			return
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					logrus.WithFields(logrus.Fields{
						"user_id": c.UserID,
						"remote":  c.remote,
					}).Warn("Realtime client queue full, dropping event")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts an event to local clients and hands it to the forwarder.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Could not encode realtime payload")
		return
	}
	env := Envelope{Event: event, Data: data}
	h.Deliver(env)
	if h.forwarder != nil {
		h.forwarder.Forward(env)
	}
}

// Deliver broadcasts to local clients only. Events arriving from the relay use this.
func (h *Hub) Deliver(env Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		logrus.WithError(err).WithField("event", env.Event).Error("Could not encode realtime envelope")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logrus.WithField("event", env.Event).Warn("Realtime broadcast channel full, dropping event")
	}
}

// Register adds conn to the hub and starts its writer.
func (h *Hub) Register(conn *websocket.Conn, userID uint, role string) (*Client, error) {
	c := &Client{
		UserID: userID,
		Role:   role,
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.queueSize),
		remote: conn.RemoteAddr().String(),
	}

	h.mu.Lock()
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		h.mu.Unlock()
		return nil, ErrTooManyClients
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if err := h.writers.Submit(c.writeLoop); err != nil {
		h.Unregister(c)
		if errors.Is(err, worker.ErrPoolFull) {
			return nil, ErrTooManyClients
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    role,
		"remote":  c.remote,
	}).Info("Realtime client connected")
	return c, nil
}

// Unregister removes c and stops its writer. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		logrus.WithFields(logrus.Fields{
			"user_id": c.UserID,
			"remote":  c.remote,
		}).Info("Realtime client disconnected")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and stops the broadcast loop.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.Unregister(c)
	}
}
