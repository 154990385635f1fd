package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

// MarketFeed defines the streaming surface of the market simulator.
type MarketFeed interface {
	Tickers() []models.Ticker
	Subscribe() (<-chan []models.Ticker, func())
}

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Demo service, no origin restrictions.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewMarketFeedHandler returns a websocket handler streaming ticker updates.
// The current snapshot is sent on connect, then every simulator tick until
// the client goes away.
func NewMarketFeedHandler(feed MarketFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Log.Errorw("websocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		updates, cancel := feed.Subscribe()
		defer cancel()

		// Reads are discarded, but a read loop is still needed to notice
		// the peer closing the connection.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		writeTickers := func(tickers []models.Ticker) error {
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			return conn.WriteJSON(TickersResponse{Tickers: tickers})
		}

		if err := writeTickers(feed.Tickers()); err != nil {
			logger.Log.Warnw("websocket initial write failed", "err", err)
			return
		}

		for {
			select {
			case tickers, ok := <-updates:
				if !ok {
					return
				}
				if err := writeTickers(tickers); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						logger.Log.Warnw("websocket write failed", "err", err)
					}
					return
				}
			case <-closed:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
