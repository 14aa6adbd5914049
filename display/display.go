package display

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"tamias/order"
	"tamias/rdx"
	"tamias/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

const presenceTTL = 2 * time.Minute

func presenceKey(store string) string { return "display:online:" + store }

func setPresence(store string, count int) {
	if rdx.Conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdx.RdxSet(ctx, presenceKey(store), strconv.Itoa(count), presenceTTL); err != nil {
		log.Println("display presence:", err)
	}
}

// WebSocketHandler upgrades a customer display connection and keeps it
// subscribed to the store's cart stream until it disconnects.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store := ps.ByName("storeid")
		if store == "" {
			http.Error(w, "store required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("display upgrade:", err)
			return
		}

		client := &Client{
			Conn:  conn,
			Send:  make(chan []byte, 256),
			Store: store,
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// Displays are read-only screens; the read pump only exists to notice
// the connection closing.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Bridge pumps cart events from the broker into the hub, routing each
// event to the room of the store it belongs to.
func Bridge(ctx context.Context, hub *Hub, events <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-events:
			if !ok {
				return
			}
			var evt order.Event
			if err := json.Unmarshal(data, &evt); err != nil {
				log.Println("display bridge: bad event:", err)
				continue
			}
			if evt.StoreID == "" {
				continue
			}
			hub.broadcast <- broadcastMsg{Store: evt.StoreID, Data: data}
		}
	}
}

// GetStatus tells the register whether a customer display is connected
// for its store.
func GetStatus(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		storeID := utils.GetStoreIDFromRequest(r)
		if storeID == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		count := hub.Count(storeID)
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"connected": count > 0,
			"displays":  count,
		})
	}
}
