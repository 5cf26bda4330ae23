package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// RuntimeClient is one attached chat connection as the registry sees it.
// Writes go through a buffered channel so a slow reader cannot block a
// room broadcast.
type RuntimeClient struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	id     string
	room   string
	out    chan []byte
	once   sync.Once
}

func NewClient(parent context.Context, ws *WebSocket, room string) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		id:     uuid.NewString(),
		room:   room,
		out:    make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

func (c *RuntimeClient) ID() string   { return c.id }
func (c *RuntimeClient) Room() string { return c.room }

func (c *RuntimeClient) Send(ctx context.Context, data []byte) error {
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return errors.New("client closed")
	}
}

// Close is safe to call from any goroutine; out is never closed so a
// concurrent Send can at worst drop the payload.
func (c *RuntimeClient) Close() {
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		}
	}
}
