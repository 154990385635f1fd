package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tradex/tradex-wallet/internal/models"
)

// TickerLister defines ticker snapshot access.
type TickerLister interface {
	Tickers() []models.Ticker
}

// OrderBookProvider defines order-book snapshot access.
type OrderBookProvider interface {
	OrderBook() models.OrderBook
}

// TickersResponse represents a ticker snapshot
// swagger:model TickersResponse
type TickersResponse struct {
	// Simulated ticker set
	Tickers []models.Ticker `json:"tickers"`
}

// OrderBookResponse represents an order-book snapshot
// swagger:model OrderBookResponse
type OrderBookResponse struct {
	// Simulated BTC/USDT depth
	OrderBook models.OrderBook `json:"order_book"`
}

// NewGetTickersHandler returns an HTTP handler for the simulated ticker set.
// @Summary List tickers
// @Description Returns the current simulated prices for all pairs.
// @Tags market
// @Produce json
// @Success 200 {object} handlers.TickersResponse "Ticker snapshot"
// @Router /market/tickers [get]
func NewGetTickersHandler(svc TickerLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TickersResponse{
			Tickers: svc.Tickers(),
		})
	}
}

// NewGetOrderBookHandler returns an HTTP handler for the simulated order book.
// @Summary Get order book
// @Description Returns twelve ask and twelve bid levels around the last BTC price.
// @Tags market
// @Produce json
// @Success 200 {object} handlers.OrderBookResponse "Order-book snapshot"
// @Router /market/orderbook [get]
func NewGetOrderBookHandler(svc OrderBookProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(OrderBookResponse{
			OrderBook: svc.OrderBook(),
		})
	}
}
