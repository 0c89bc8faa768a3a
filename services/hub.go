package services

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub fans game events out to every websocket client watching a game code.
type Hub struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	gameService *GameService
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	gameCode string
	playerID uint
	alias    string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(gameService *GameService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		gameService: gameService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s registered for game %s (player %d: %s)", client.id, client.gameCode, client.playerID, client.alias)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client %s unregistered from game %s (player %d: %s)", client.id, client.gameCode, client.playerID, client.alias)
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToGame sends a typed event to every client on a game code.
func (h *Hub) BroadcastToGame(gameCode string, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if strings.EqualFold(client.gameCode, gameCode) {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(h.clients, client)
			}
		}
	}
}

// GetConnectedPlayers lists player IDs with an open socket for the game.
func (h *Hub) GetConnectedPlayers(gameCode string) []uint {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var playerIDs []uint
	for client := range h.clients {
		if strings.EqualFold(client.gameCode, gameCode) {
			playerIDs = append(playerIDs, client.playerID)
		}
	}
	return playerIDs
}

func (h *Hub) IsPlayerConnected(gameCode string, playerID uint) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if strings.EqualFold(client.gameCode, gameCode) && client.playerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) RegisterClient(conn *websocket.Conn, gameCode string, playerID uint, alias string) *Client {
	client := &Client{
		hub:      h,
		id:       uuid.NewString(),
		socket:   conn,
		send:     make(chan []byte, 256),
		gameCode: gameCode,
		playerID: playerID,
		alias:    alias,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.send <- data

	case "request_round":
		c.sendRoundSync()

	default:
		log.Printf("Unknown message type %q from player %d in game %s", msg.Type, c.playerID, c.gameCode)
	}
}

// sendRoundSync pushes the current round snapshot to one client, used when a
// client reconnects mid-round.
func (c *Client) sendRoundSync() {
	if c.hub.gameService == nil {
		return
	}
	round, err := c.hub.gameService.GetRoundData(c.gameCode)
	if err != nil {
		log.Printf("Error getting round snapshot for client %s: %v", c.id, err)
		return
	}
	data, err := json.Marshal(Message{Type: "round_sync", Payload: round})
	if err != nil {
		log.Printf("Error marshaling round sync message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
