package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"roomsync/internal/engine"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и GameService
type Client struct {
	Game  *engine.GameService
	Conn  *websocket.Conn
	Codec api.Codec
	ID    string
	Send  <-chan api.Message

	limiter *rate.Limiter
	log     *logrus.Entry
}

// NewClient регистрирует подключение в сервисе. После этого клиенту уже
// лежит welcome в канале Send.
func NewClient(game *engine.GameService, conn *websocket.Conn, codec api.Codec) *Client {
	id, send := game.Connect()
	return &Client{
		Game:    game,
		Conn:    conn,
		Codec:   codec,
		ID:      id,
		Send:    send,
		limiter: rate.NewLimiter(rate.Limit(game.Config.RequestRate), game.Config.RequestBurst),
		log:     logger.Log.WithFields(logrus.Fields{"conn_id": id, "codec": codec.Name()}),
	}
}

// readPump читает запросы клиента и обрабатывает их по одному, в порядке прихода
func (c *Client) readPump() {
	defer func() {
		c.Game.Disconnect(c.ID)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
	}()

	c.Conn.SetReadLimit(c.Game.Config.MaxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("WS read error")
			}
			return
		}

		if !c.limiter.Allow() {
			c.log.Debug("Request rate exceeded, message dropped")
			continue
		}

		in, err := c.Codec.Decode(data)
		if err != nil {
			c.log.WithError(err).Warn("Malformed message dropped")
			continue
		}

		// Ошибка уже залогирована сервисом, соединение продолжает работу.
		_ = c.Game.ProcessCommand(c.ID, in)
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	frameType := websocket.TextMessage
	if c.Codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				// канал закрыт Hub-ом: отключение или медленный клиент
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}

			data, err := c.Codec.Encode(message)
			if err != nil {
				c.log.WithError(err).WithField("event", message.Event).Error("encode failed")
				continue
			}
			if err := c.Conn.WriteMessage(frameType, data); err != nil {
				c.log.WithError(err).Debug("write message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
