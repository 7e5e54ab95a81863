package websocket

import (
	"context"
	"log"
	"sync"
)

// Subscriber is a live connection; *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	OrderID string
	Conn    Subscriber
}

type StatusUpdate struct {
	OrderID       string `json:"orderId"`
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

// Hub fans order status transitions out to the clients watching each order.
type Hub struct {
	clients   map[string]map[*Client]struct{}
	clientsMu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan StatusUpdate
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan StatusUpdate, 64),
		done:       make(chan struct{}),
	}
}

// Register and Unregister return immediately once Run has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Conn.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues a status update. Updates are dropped when the queue is full.
func (h *Hub) Publish(orderID, orderStatus, paymentStatus string) {
	update := StatusUpdate{OrderID: orderID, OrderStatus: orderStatus, PaymentStatus: paymentStatus}
	select {
	case h.broadcast <- update:
	default:
		log.Printf("⚠️ Order status queue full, dropping update for order %s", orderID)
	}
}

// Subscribers returns how many clients watch orderID.
func (h *Hub) Subscribers(orderID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[orderID])
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.OrderID] == nil {
				h.clients[client.OrderID] = make(map[*Client]struct{})
			}
			h.clients[client.OrderID][client] = struct{}{}
			h.clientsMu.Unlock()
		case client := <-h.unregister:
			h.remove(client)
		case update := <-h.broadcast:
			h.clientsMu.RLock()
			watchers := make([]*Client, 0, len(h.clients[update.OrderID]))
			for client := range h.clients[update.OrderID] {
				watchers = append(watchers, client)
			}
			h.clientsMu.RUnlock()

			for _, client := range watchers {
				if err := client.Conn.WriteJSON(update); err != nil {
					log.Printf("Error sending status of order %s: %v", update.OrderID, err)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	watchers, ok := h.clients[client.OrderID]
	if !ok {
		return
	}
	if _, ok := watchers[client]; !ok {
		return
	}
	delete(watchers, client)
	if len(watchers) == 0 {
		delete(h.clients, client.OrderID)
	}
	_ = client.Conn.Close()
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for orderID, watchers := range h.clients {
		for client := range watchers {
			_ = client.Conn.Close()
		}
		delete(h.clients, orderID)
	}
}
