package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradex/tradex-wallet/internal/services"
)

func TestMarketFeedHandler(t *testing.T) {
	market := services.NewMarketService(1)

	server := httptest.NewServer(NewMarketFeedHandler(market))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The current snapshot arrives right after the upgrade.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var initial TickersResponse
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Len(t, initial.Tickers, 7)

	// Each simulator tick pushes an update to the subscriber.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go market.Run(ctx, 10*time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var update TickersResponse
	require.NoError(t, conn.ReadJSON(&update))
	assert.Len(t, update.Tickers, 7)
}
