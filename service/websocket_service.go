package service

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/invoice-agent-be/types"
)

// WebSocketService pushes processing status updates to connected clients
// while an invoice is being indexed and extracted.
type WebSocketService struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleStatus upgrades the connection and keeps it registered for status
// broadcasts until the client goes away.
func (s *WebSocketService) HandleStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			conn.WriteMessage(messageType, []byte("Error processing message"))
			log.Println("Unmarshal error:", err)
			continue
		}
		switch req.Type {
		case types.TypeWebsocketPing:
			pongRes := types.WebSocketResponse{
				Type:    types.TypeWebsocketPong,
				Payload: nil,
			}
			if err := conn.WriteJSON(pongRes); err != nil {
				log.Println("Write error:", err)
			}
		default:
			log.Println("Invalid message type")
		}
	}
}

// Broadcast sends the status to every connected client. Dead connections are
// dropped on write failure.
func (s *WebSocketService) Broadcast(status types.ProcessingStatus) {
	message := types.WebSocketResponse{
		Type:    types.TypeWebsocketProcessing,
		Payload: status,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(message); err != nil {
			log.Println("Write error:", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}
