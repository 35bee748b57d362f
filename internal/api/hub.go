package api

import (
	"net/http"
	"sync"
	"time"

	"levelup/internal/model"
	"levelup/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	clientSendSize = 16

	MessageEvent      = "event"
	MessageForeground = "foreground"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Message struct {
	Type    string       `json:"type"`
	Payload *model.Event `json:"payload,omitempty"`
}

// Hub fans engine events out to every connected websocket client. Clients
// may send a foreground message to request a maintenance tick.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	fg      ForegroundNotifier
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// SetForeground wires the receiver of client foreground messages.
func (h *Hub) SetForeground(fg ForegroundNotifier) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fg = fg
}

func NewHubRoutes(handler *gin.RouterGroup, h *Hub) {
	handler.GET("/ws", h.handleWebSocket)
}

// Publish implements service.Notifier. Slow clients drop messages instead
// of blocking the engine.
func (h *Hub) Publish(e model.Event) {
	log := logger.Logger()

	data, err := json.Marshal(Message{Type: MessageEvent, Payload: &e})
	if err != nil {
		log.Error("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Warn("websocket client too slow, event dropped", zap.String("event", string(e.Type)))
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, clientSendSize)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(cl)
	h.readLoop(cl)
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *Hub) readLoop(cl *client) {
	log := logger.Logger()

	defer func() {
		h.remove(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("websocket unexpected close", zap.Error(err))
			}
			return
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Debug("failed to unmarshal message", zap.Error(err))
			continue
		}

		if message.Type == MessageForeground {
			h.mu.RLock()
			fg := h.fg
			h.mu.RUnlock()
			if fg != nil {
				fg.NotifyForeground()
			}
		}
	}
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
