package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/tic-tac-toe-web/internal/domain"
	"github.com/kiryu-dev/tic-tac-toe-web/pkg/utils"
	"github.com/pkg/errors"
)

const writeTimeout = 5 * time.Second

type client struct {
	conn *websocket.Conn
	key  string
	mu   *sync.Mutex
}

func newClient(conn *websocket.Conn, key string) *client {
	return &client{
		conn: conn,
		key:  key,
		mu:   &sync.Mutex{},
	}
}

// WriteMessage is safe for concurrent use: session updates are pushed from timer goroutines.
func (c *client) WriteMessage(msg domain.Message) error {
	data, err := utils.Json.Marshal(msg)
	if err != nil {
		return errors.WithMessage(err, "marshal message")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.WithMessage(err, "websocket conn write message")
	}
	return nil
}

func (c *client) ReadMessage() (domain.Message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
			websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) {
			return domain.Message{}, domain.ErrConnectionClosed
		}
		return domain.Message{}, errors.WithMessage(err, "websocket conn read message")
	}
	if len(data) == 0 {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	var msg domain.Message
	if err := utils.Json.Unmarshal(data, &msg); err != nil {
		return domain.Message{}, errors.WithMessagef(domain.ErrMalformedMessage, "%v", err)
	}
	return msg, nil
}

func (c *client) Key() string {
	return c.key
}

func (c *client) Close() {
	_ = c.conn.Close()
}
