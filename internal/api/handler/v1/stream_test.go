package v1

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhub/orders-api/internal/domain"
)

func TestOrderStream_DeliversCreatedOrders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewOrderStreamHandler()
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/orders/stream", hub.HandleOrderStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/orders/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	hub.PublishOrderCreated(domain.CreateOrderResult{
		Order:    domain.Order{ID: 42, TotalQuantity: 3},
		Accruals: []domain.ClientAccrual{{ClientID: 1, Tier: domain.TierPremium, Points: 8, Promoted: true}},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event OrderEvent
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, uint(42), event.Order.ID)
	require.Len(t, event.Accruals, 1)
	assert.True(t, event.Accruals[0].Promoted)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestOrderStream_PublishWithoutSubscribers(t *testing.T) {
	hub := NewOrderStreamHandler()

	// Nothing runs the hub; publishing must still return.
	for i := 0; i < 100; i++ {
		hub.PublishOrderCreated(domain.CreateOrderResult{Order: domain.Order{ID: uint(i)}})
	}

	assert.Equal(t, 0, hub.Subscribers())
}
