package websocket

import "github.com/rs/zerolog/log"

type userMessage struct {
	userID  int64
	client  *Client // when set, only this connection receives the message
	message []byte
}

type countRequest struct {
	userID int64
	reply  chan int
}

// Hub maintains the set of active clients and routes messages to them. All
// of its maps are owned by the Run goroutine.
type Hub struct {
	// Registered clients, grouped by the user they authenticated as.
	clients map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	direct     chan userMessage
	counts     chan countRequest
	done       chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan userMessage),
		counts:     make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for _, set := range h.clients {
				for client := range set {
					close(client.Send)
				}
			}
			h.clients = make(map[int64]map[*Client]bool)
			return
		case client := <-h.register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Info().Int64("user_id", client.UserID).Str("client_id", client.ID).Msg("Client connected")
		case client := <-h.unregister:
			if h.remove(client) {
				log.Info().Int64("user_id", client.UserID).Str("client_id", client.ID).Msg("Client disconnected")
			}
		case m := <-h.direct:
			for client := range h.clients[m.userID] {
				if m.client == nil || m.client == client {
					h.deliver(client, m.message)
				}
			}
		case req := <-h.counts:
			req.reply <- len(h.clients[req.userID])
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// SendToUser queues message for every connection of userID. It is a no-op
// once the hub is stopped.
func (h *Hub) SendToUser(userID int64, message []byte) {
	select {
	case h.direct <- userMessage{userID: userID, message: message}:
	case <-h.done:
	}
}

// SendToClient queues message for a single connection. Replies to a client
// go through the hub so they never race with its send channel being closed.
func (h *Hub) SendToClient(client *Client, message []byte) {
	select {
	case h.direct <- userMessage{userID: client.UserID, client: client, message: message}:
	case <-h.done:
	}
}

// Attach registers client. It returns false once the hub is stopped, in
// which case the client's send channel is left open and never served.
func (h *Hub) Attach(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Detach unregisters client unless the hub is already stopped.
func (h *Hub) Detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Connections returns the number of live connections of userID.
func (h *Hub) Connections(userID int64) int {
	req := countRequest{userID: userID, reply: make(chan int, 1)}
	select {
	case h.counts <- req:
		return <-req.reply
	case <-h.done:
		return 0
	}
}

// deliver drops a client whose send buffer is full.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		log.Warn().Int64("user_id", client.UserID).Str("client_id", client.ID).Msg("Dropping slow websocket client")
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) bool {
	set, ok := h.clients[client.UserID]
	if !ok || !set[client] {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
	return true
}
