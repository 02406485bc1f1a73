package channel

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jaeholee/decotree/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var errClientGone = errors.New("client connection closed")

// ClientMessage is the inbound frame from a connected browser. Exactly
// one of the payload fields is set.
type ClientMessage struct {
	Push *Push `json:"push,omitempty"`
}

// Push places a decoration on the channel's canvas.
type Push struct {
	Id       string         `json:"id,omitempty"`
	Url      string         `json:"url"`
	Comment  string         `json:"comment"`
	Position types.Position `json:"position"`
}

// Client adapts a websocket connection to the Connection capability a
// channel fans out to. It owns the read and write pumps for the
// socket.
type Client struct {
	conn    *websocket.Conn
	channel *Channel
	user    *User
	log     *log.Logger
	send    chan Event
	stop    chan struct{}
}

func NewClient(conn *websocket.Conn, ch *Channel, info types.UserInfo, session string, logger *log.Logger) *Client {
	c := &Client{
		conn:    conn,
		channel: ch,
		log:     logger,
		send:    make(chan Event, 256),
		stop:    make(chan struct{}),
	}
	c.user = &User{UserInfo: info, Session: session, Conn: c}

	return c
}

// User returns the roster entry bound to this connection.
func (c *Client) User() *User {
	return c.user
}

// Send queues an event for delivery. It never blocks: a full queue or
// a closed connection is a failed delivery.
func (c *Client) Send(ev Event) error {
	select {
	case <-c.stop:
		return errClientGone
	default:
	}

	select {
	case c.send <- ev:
		return nil
	default:
		return errors.New("send queue full")
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case ev := <-c.send:
			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			continue
		}

		if msg.Push != nil {
			c.channel.PushObject(newObject(msg.Push), c.user)
		}
	}
}

func newObject(p *Push) types.Object {
	id := p.Id
	if id == "" {
		id = uuid.NewString()
	}

	return types.Object{
		Id:        id,
		Url:       p.Url,
		Comment:   p.Comment,
		CreatedAt: time.Now().UTC(),
		Position:  p.Position,
	}
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) cleanup() {
	c.channel.Leave(c.user)
	close(c.stop)
}
