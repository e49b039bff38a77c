package sessions

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/Desarso/companion/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBuffer is how many events a client may lag behind before it is dropped.
const sendBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type hubClient struct {
	writer *WebSocketWriter
	send   chan models.Event
}

// Hub fans chat events out to every connected UI. It implements EventPublisher.
// Publish never blocks: each client has its own queue and writer goroutine.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*hubClient
	logger  *log.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*hubClient),
		logger:  log.New(os.Stdout, "[WS] ", log.LstdFlags),
	}
}

func (h *Hub) Publish(event models.Event) {
	var slow []string
	h.mu.RLock()
	for id, cl := range h.clients {
		select {
		case cl.send <- event:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		h.logger.Printf("client %s is not reading, dropping it", id[:8])
		h.remove(id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and keeps the connection registered until the
// client goes away. The socket is push-only: frames from the client get an
// error reply.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, hello models.Event) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}
	id := uuid.NewString()
	writer := &WebSocketWriter{
		Conn:   conn,
		Logger: log.New(os.Stdout, fmt.Sprintf("[WS %s] ", id[:8]), log.LstdFlags),
	}
	if err := writer.WriteEvent(hello); err != nil {
		writer.Logger.Printf("hello failed: %v", err)
		conn.Close()
		return
	}

	h.register(id, writer)
	writer.Logger.Printf("connected (%d clients)", h.Len())
	defer h.remove(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		if err := writer.WriteError("socket is receive-only, use the HTTP API"); err != nil {
			return
		}
	}
}

func (h *Hub) register(id string, writer *WebSocketWriter) {
	cl := &hubClient{writer: writer, send: make(chan models.Event, sendBuffer)}
	h.mu.Lock()
	h.clients[id] = cl
	h.mu.Unlock()
	go h.pump(id, cl)
}

// pump writes queued events until the queue is closed by remove.
func (h *Hub) pump(id string, cl *hubClient) {
	for event := range cl.send {
		if err := cl.writer.WriteEvent(event); err != nil {
			cl.writer.Logger.Printf("write failed, dropping connection: %v", err)
			h.remove(id)
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	cl, ok := h.clients[id]
	delete(h.clients, id)
	if ok {
		close(cl.send)
	}
	h.mu.Unlock()
	if ok {
		cl.writer.Conn.Close()
	}
}
