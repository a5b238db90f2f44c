// Package stream serves rendered frames to websocket preview clients and
// collects their control messages.
package stream

import (
	"image"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcast/internal/logger"
)

var log = logger.Stream

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	maxControlSize = 4096
	sendBuffer     = 4
	controlBuffer  = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   string
}

// Hub fans frames out to every connected client. A client that falls
// behind by more than a few frames is disconnected.
type Hub struct {
	clients map[*client]bool
	lock    sync.Mutex
	closed  bool

	controls chan Control
	seq      atomic.Uint32
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*client]bool),
		controls: make(chan Control, controlBuffer),
	}
}

// Controls delivers client commands. Commands are dropped when the
// channel is full.
func (h *Hub) Controls() <-chan Control { return h.controls }

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Broadcast compresses img once and queues it for every client.
func (h *Hub) Broadcast(img *image.RGBA) error {
	msg, err := EncodeFrame(h.seq.Add(1), img)
	if err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warn("dropping slow stream client", zap.String("client", c.id))
			h.remove(c)
		}
	}
	return nil
}

// remove must be called with h.lock held.
func (h *Hub) remove(c *client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), id: r.RemoteAddr}

	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	h.lock.Unlock()

	log.Info("stream client connected", zap.String("client", c.id))

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.lock.Lock()
		h.remove(c)
		h.lock.Unlock()
		c.conn.Close()
		log.Info("stream client disconnected", zap.String("client", c.id))
	}()

	c.conn.SetReadLimit(maxControlSize)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		ctrl, err := ParseControl(data)
		if err != nil {
			log.Debug("ignoring control message", zap.String("client", c.id), zap.Error(err))
			continue
		}

		select {
		case h.controls <- ctrl:
		default:
			log.Warn("control queue full", zap.String("type", string(ctrl.Type)))
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closed = true
	for c := range h.clients {
		h.remove(c)
	}
}
