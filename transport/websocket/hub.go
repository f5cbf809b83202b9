package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventRoomUpdate = "room_update"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message is pushed to every subscriber of a room when its session changes.
// Clients re-poll on receipt; the message carries no game state.
type Message struct {
	Event    string `json:"event"`
	RoomCode string `json:"room_code"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	code string
}

// Hub fans room notifications out to websocket subscribers.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	roomsMutex sync.RWMutex
	rooms      map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "wsHub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		rooms: make(map[string]map[*client]struct{}),
	}
}

// ServeHTTP upgrades GET /ws?code=XXXXXX and subscribes the connection to
// that room.
func (that *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("code")))
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		hub:  that,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		code: code,
	}
	that.register(c)

	go c.writePump()
	go c.readPump()
}

// Notify tells every subscriber of code to refresh. It never blocks: a
// subscriber whose buffer is full is dropped.
func (that *Hub) Notify(code string) {
	data, err := json.Marshal(Message{Event: EventRoomUpdate, RoomCode: code})
	if err != nil {
		that.logger.Error("failed to marshal room update", "error", err)
		return
	}

	that.roomsMutex.RLock()
	var stale []*client
	for c := range that.rooms[code] {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	that.roomsMutex.RUnlock()

	for _, c := range stale {
		that.logger.Warn("dropping slow subscriber", "roomCode", code)
		that.unregister(c)
	}
}

// Subscribers returns the number of connections listening on code.
func (that *Hub) Subscribers(code string) int {
	that.roomsMutex.RLock()
	defer that.roomsMutex.RUnlock()

	return len(that.rooms[code])
}

// Close disconnects every subscriber.
func (that *Hub) Close() {
	that.roomsMutex.Lock()
	defer that.roomsMutex.Unlock()

	for code, clients := range that.rooms {
		for c := range clients {
			close(c.send)
		}
		delete(that.rooms, code)
	}
}

func (that *Hub) register(c *client) {
	that.roomsMutex.Lock()
	defer that.roomsMutex.Unlock()

	if that.rooms[c.code] == nil {
		that.rooms[c.code] = make(map[*client]struct{})
	}
	that.rooms[c.code][c] = struct{}{}

	that.logger.Debug("subscriber registered", "roomCode", c.code, "subscribers", len(that.rooms[c.code]))
}

func (that *Hub) unregister(c *client) {
	that.roomsMutex.Lock()
	defer that.roomsMutex.Unlock()

	clients, ok := that.rooms[c.code]
	if !ok {
		return
	}

	if _, ok = clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(that.rooms, c.code)
	}
}

// readPump only keeps the connection alive; subscribers never send anything
// meaningful.
func (that *client) readPump() {
	defer func() {
		that.hub.unregister(that)
		_ = that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := that.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				that.hub.logger.Warn("unexpected websocket close", "roomCode", that.code, "error", err)
			}
			return
		}
	}
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case message, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
