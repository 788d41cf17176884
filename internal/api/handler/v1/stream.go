package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/workhub/orders-api/internal/domain"
	"github.com/workhub/orders-api/internal/logger"
)

const (
	EventOrderCreated = "order.created"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// OrderEvent is what dashboard subscribers receive.
type OrderEvent struct {
	Type     string                 `json:"type"`
	Order    domain.Order           `json:"order"`
	Accruals []domain.ClientAccrual `json:"accruals"`
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// OrderStreamHandler fans order events out to websocket subscribers.
type OrderStreamHandler struct {
	subscribers map[string]*subscriber
	mu          sync.RWMutex
	broadcast   chan []byte
	register    chan *subscriber
	unregister  chan *subscriber
	done        chan struct{}
}

func NewOrderStreamHandler() *OrderStreamHandler {
	return &OrderStreamHandler{
		subscribers: make(map[string]*subscriber),
		broadcast:   make(chan []byte, 64),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		done:        make(chan struct{}),
	}
}

// Run dispatches events until ctx is cancelled.
func (h *OrderStreamHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, s := range h.subscribers {
				close(s.send)
				delete(h.subscribers, id)
			}
			h.mu.Unlock()
			return
		case s := <-h.register:
			h.mu.Lock()
			h.subscribers[s.id] = s
			h.mu.Unlock()
		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[s.id]; ok {
				delete(h.subscribers, s.id)
				close(s.send)
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for id, s := range h.subscribers {
				select {
				case s.send <- message:
				default:
					// Slow consumer.
					close(s.send)
					delete(h.subscribers, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *OrderStreamHandler) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

// PublishOrderCreated queues the event without blocking the request. Events
// are dropped when the hub is saturated.
func (h *OrderStreamHandler) PublishOrderCreated(result domain.CreateOrderResult) {
	message, err := json.Marshal(OrderEvent{
		Type:     EventOrderCreated,
		Order:    result.Order,
		Accruals: result.Accruals,
	})
	if err != nil {
		zap.L().Warn("marshal order event", zap.Uint("order_id", result.Order.ID), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
		zap.L().Warn("order stream saturated, event dropped", zap.Uint("order_id", result.Order.ID))
	}
}

// HandleOrderStream godoc
// @Summary      Live order feed
// @Description  Upgrades to a websocket that receives an order.created event for every new order.
// @Tags         orders
// @Success      101  {string}  string  "Switching Protocols to WebSocket"
// @Failure      401  {object}  response.Err
// @Router       /orders/stream [get]
// @Security     BearerAuth
func (h *OrderStreamHandler) HandleOrderStream(ctx *gin.Context) {
	log := logger.FromContext(ctx.Request.Context())

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	s := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case h.register <- s:
	case <-h.done:
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go s.writePump()
	go s.readPump(h)
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the connection closing; subscribers do not send.
func (s *subscriber) readPump(h *OrderStreamHandler) {
	defer func() {
		select {
		case h.unregister <- s:
		case <-h.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("order stream read", zap.String("subscriber", s.id), zap.Error(err))
			}
			return
		}
	}
}
