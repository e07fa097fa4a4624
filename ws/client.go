package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"stackbattle-server/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between one websocket connection and its room.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Room     *game.Room
	PlayerID string
	Name     string
}

// ReadPump pumps commands from the websocket connection into the room.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Action {
	case "ready":
		c.submit(game.Action{Type: game.ActionReady})
	case "draw_card":
		c.submit(game.Action{Type: game.ActionDrawCard})
	case "place_card":
		c.handlePlaceCard(envelope.Raw)
	case "give_from_stack":
		c.handleGiveFromStack(envelope.Raw)
	case "end_turn":
		c.submit(game.Action{Type: game.ActionEndTurn})
	case "donate_cards":
		c.handleDonateCards(envelope.Raw)
	case "play_card":
		c.handlePlayCard(envelope.Raw)
	case "take_pile":
		c.submit(game.Action{Type: game.ActionTakePile})
	default:
		c.sendError("Unknown action: " + envelope.Action)
	}
}

func (c *Client) submit(a game.Action) {
	a.PlayerID = c.PlayerID
	c.Room.Submit(a)
}

func (c *Client) handlePlaceCard(raw json.RawMessage) {
	var msg PlaceCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid place_card message.")
		return
	}
	c.submit(game.Action{
		Type:     game.ActionPlaceCard,
		Card:     msg.Card,
		TargetID: msg.TargetID,
	})
}

func (c *Client) handleGiveFromStack(raw json.RawMessage) {
	var msg GiveFromStackMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid give_from_stack message.")
		return
	}
	c.submit(game.Action{Type: game.ActionGiveFromStack, TargetID: msg.TargetID})
}

func (c *Client) handleDonateCards(raw json.RawMessage) {
	var msg DonateCardsMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid donate_cards message.")
		return
	}
	c.submit(game.Action{Type: game.ActionDonateCards, Donations: msg.Donations})
}

func (c *Client) handlePlayCard(raw json.RawMessage) {
	var msg PlayCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid play_card message.")
		return
	}
	c.submit(game.Action{Type: game.ActionPlayCard, Card: msg.Card})
}

func (c *Client) sendError(message string) {
	msg := game.ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	select {
	case c.Send <- data:
	default:
	}
}
