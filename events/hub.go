// Package events broadcasts ledger changes to connected dashboard
// clients over websocket.
package events

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kmathenge/gasflow-app/models"
)

// Event types
const (
	EventCustomerUpdate    = "customer_update"
	EventTransactionUpdate = "transaction_update"
	EventPaymentUpdate     = "payment_update"
	EventBalanceDrift      = "balance_drift"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client and serializes broadcasts.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades a dashboard connection and keeps it registered until
// the peer goes away.
func Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	role := c.DefaultQuery("role", "staff")
	RegisterClient(conn, role)

	go func() {
		defer UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// RegisterClient adds a connection to the broadcast set.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastCustomerUpdate -> a customer record changed.
func BroadcastCustomerUpdate(customer models.Customer) {
	broadcast(Message{
		Event: EventCustomerUpdate,
		Data:  customer,
	})
}

// BroadcastTransactionUpdate -> a transaction was created or edited.
func BroadcastTransactionUpdate(txn models.Transaction) {
	broadcast(Message{
		Event: EventTransactionUpdate,
		Data:  txn,
	})
}

// BroadcastPaymentUpdate -> a payment was captured.
func BroadcastPaymentUpdate(payment models.Payment) {
	broadcast(Message{
		Event: EventPaymentUpdate,
		Data:  payment,
	})
}

// BroadcastBalanceDrift -> the auditor found stored aggregates out of
// step with the recomputed history.
func BroadcastBalanceDrift(change models.LedgerChange) {
	broadcast(Message{
		Event: EventBalanceDrift,
		Data:  change,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("error marshaling event: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("error sending event to client: %v", err)
		}
	}
}
