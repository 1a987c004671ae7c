package server

import (
	"encoding/json"
	"net/http"

	"stock-analysis/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// directMessage is a reply for a single client.
type directMessage struct {
	client *Client
	update *models.MUpdate
}

// handleWebsockets is the main Hub loop. It returns after Stop.
func (s *AnalyticsServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setConnections(len(s.clients))

			// Send current state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				initial := *s.latestState
				initial.Type = models.UpdateTypeInitial
				client.send <- &initial
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
				s.setConnections(len(s.clients))
			}

		case message := <-s.broadcast:
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.setConnections(len(s.clients))

		case msg := <-s.direct:
			if _, ok := s.clients[msg.client]; !ok {
				continue
			}
			select {
			case msg.client.send <- msg.update:
			default:
				s.Logger.Warning("Client buffer full, dropping subscribe response")
			}

		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.setConnections(0)
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) setConnections(n int) {
	s.stateMutex.Lock()
	s.connections = n
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues a payload for every websocket client. Payloads other than
// *models.MUpdate are dropped.
func (s *AnalyticsServer) Broadcast(payload interface{}) {
	update, ok := payload.(*models.MUpdate)
	if !ok {
		s.Logger.Warning("Broadcast expected *models.MUpdate, got %T", payload)
		return
	}

	select {
	case s.broadcast <- update:
	case <-s.done:
	default:
		s.Logger.Warning("Broadcast queue full, dropping update")
	}
}

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

// SetLatestState - Thread-safe state update
func (s *AnalyticsServer) SetLatestState(state *models.MUpdate) {
	s.stateMutex.Lock()
	s.latestState = state
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *AnalyticsServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MUpdate, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

// HandleClientMessage answers a subscribe command with an overview restricted
// to the requested symbols and dates.
func (s *AnalyticsServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	var response *models.MUpdate
	filter, err := parseFilter(cmd.From, cmd.To, cmd.Symbols)
	if err != nil {
		response = &models.MUpdate{Type: models.UpdateTypeInitial, Error: err.Error()}
	} else {
		rows, _, _ := s.snapshot()
		response = s.buildUpdate(models.UpdateTypeInitial, filter.Apply(rows))
	}

	// The hub owns client.send, so the response goes through it
	select {
	case s.direct <- directMessage{client: client, update: response}:
	case <-s.done:
	}
}
