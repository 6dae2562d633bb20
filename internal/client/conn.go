package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

const writeWait = 10 * time.Second

// ErrClosed возвращается Emit после закрытия соединения.
var ErrClosed = errors.New("client: connection closed")

// Conn - веб-сокет до сервера. Читающая горутина кладет сообщения
// в очередь движка, Emit вызывается из цикла кадра.
type Conn struct {
	ws    *websocket.Conn
	codec api.Codec
	queue *Queue

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once

	log *logrus.Entry
}

// Dial подключается к серверу и запускает чтение в queue.
func Dial(ctx context.Context, serverURL, codecName string, queue *Queue) (*Conn, error) {
	codec, err := api.CodecByName(codecName)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	q := u.Query()
	q.Set("codec", codec.Name())
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}

	c := &Conn{
		ws:    ws,
		codec: codec,
		queue: queue,
		done:  make(chan struct{}),
		log:   logger.Component("client-conn").WithField("codec", codec.Name()),
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) readLoop() {
	defer c.Close()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("WS read error")
			}
			return
		}

		in, err := c.codec.Decode(data)
		if err != nil {
			c.log.WithError(err).Warn("Malformed server message dropped")
			continue
		}
		msg, err := DecodeServerMessage(in)
		if err != nil {
			c.log.WithError(err).WithField("event", in.Event).Warn("Server message dropped")
			continue
		}
		if !c.queue.Push(msg) && msg.Event != api.EventServerTick {
			return
		}
	}
}

// Emit отправляет сообщение серверу. Безопасен для вызова из разных горутин.
func (c *Conn) Emit(msg api.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	data, err := c.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Event, err)
	}
	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(frameType, data)
}

// Done закрывается, когда соединение разорвано.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close закрывает сокет и очередь. Повторный вызов безопасен.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.queue.Close()

		c.writeMu.Lock()
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.ws.Close()
	})
	return err
}
