package chat

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Wire protocol shared with the dashboard and the storefront widget.
// Every frame is {"event": ..., "data": ...}.
const (
	evtWaitingList = "waiting-list"
	evtChatStarted = "chat-started"
	evtMessage     = "message"

	evtGetWaitingList = "get-waiting-list"
	evtAdminAccept    = "admin-accept"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// WaitingUser is one storefront visitor queued for support.
type WaitingUser struct {
	SocketID string `json:"socketId"`
	Name     string `json:"name"`
}

type client struct {
	id      string
	name    string
	isAdmin bool
	conn    *websocket.Conn
	send    chan outFrame

	// peer is the client on the other end of an accepted chat.
	peer *client
}

// Hub routes support-chat traffic: visitors queue in a waiting list,
// an admin accepts one, and messages relay between the pair.
type Hub struct {
	mu      sync.Mutex
	waiting map[string]*client // visitors not yet accepted
	admins  map[string]*client
	logger  *zap.Logger

	upgrader websocket.Upgrader
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		waiting: make(map[string]*client),
		admins:  make(map[string]*client),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard and storefront run on their own origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request. role=admin joins the console side;
// anything else queues as a visitor with the given name.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:      uuid.New().String(),
		name:    r.URL.Query().Get("name"),
		isAdmin: r.URL.Query().Get("role") == "admin",
		conn:    conn,
		send:    make(chan outFrame, 16),
	}
	if c.name == "" {
		c.name = "Guest-" + c.id[:8]
	}

	h.mu.Lock()
	if c.isAdmin {
		h.admins[c.id] = c
	} else {
		h.waiting[c.id] = c
	}
	h.mu.Unlock()

	go c.writePump()
	go h.readPump(c)

	if !c.isAdmin {
		h.broadcastWaitingList()
	}
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			h.logger.Warn("malformed chat frame", zap.Error(err))
			continue
		}
		h.handle(c, f)
	}
}

func (h *Hub) handle(c *client, f frame) {
	switch f.Event {
	case evtGetWaitingList:
		if c.isAdmin {
			c.trySend(outFrame{Event: evtWaitingList, Data: h.waitingList()})
		}

	case evtAdminAccept:
		if !c.isAdmin {
			return
		}
		var req struct {
			UserSocketID string `json:"userSocketId"`
			AdminName    string `json:"adminName"`
		}
		if err := json.Unmarshal(f.Data, &req); err != nil {
			return
		}
		h.accept(c, req.UserSocketID, req.AdminName)

	case evtMessage:
		var msg struct {
			Text string `json:"text"`
			From string `json:"from"`
		}
		if err := json.Unmarshal(f.Data, &msg); err != nil || msg.Text == "" {
			return
		}

		h.mu.Lock()
		peer := c.peer
		h.mu.Unlock()
		if peer != nil {
			peer.trySend(outFrame{Event: evtMessage, Data: msg})
		}
	}
}

func (h *Hub) accept(admin *client, userSocketID, adminName string) {
	h.mu.Lock()
	user, ok := h.waiting[userSocketID]
	if ok {
		delete(h.waiting, userSocketID)
		admin.peer = user
		user.peer = admin
		if adminName != "" {
			admin.name = adminName
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	started := map[string]string{"userSocketId": userSocketID}
	admin.trySend(outFrame{Event: evtChatStarted, Data: started})
	user.trySend(outFrame{Event: evtChatStarted, Data: started})
	h.broadcastWaitingList()

	h.logger.Info("support chat started",
		zap.String("user_socket", userSocketID),
		zap.String("admin", admin.name))
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.waiting, c.id)
	delete(h.admins, c.id)
	if c.peer != nil {
		c.peer.peer = nil
	}
	h.mu.Unlock()

	close(c.send)
	_ = c.conn.Close()

	if !c.isAdmin {
		h.broadcastWaitingList()
	}
}

func (h *Hub) waitingList() []WaitingUser {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := make([]WaitingUser, 0, len(h.waiting))
	for _, c := range h.waiting {
		list = append(list, WaitingUser{SocketID: c.id, Name: c.name})
	}
	return list
}

func (h *Hub) broadcastWaitingList() {
	list := h.waitingList()
	h.mu.Lock()
	admins := make([]*client, 0, len(h.admins))
	for _, a := range h.admins {
		admins = append(admins, a)
	}
	h.mu.Unlock()

	for _, a := range admins {
		a.trySend(outFrame{Event: evtWaitingList, Data: list})
	}
}

// trySend never blocks; a client that can't keep up loses frames rather
// than stalling the hub.
func (c *client) trySend(f outFrame) {
	defer func() { recover() }() // send on a closed channel after drop
	select {
	case c.send <- f:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
