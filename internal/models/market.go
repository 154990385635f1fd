package models

import "github.com/shopspring/decimal"

// Ticker is a simulated market-data row for one trading pair.
// Prices move on a random walk; nothing here is a real feed.
type Ticker struct {
	Name      string          `json:"name"`       // Asset name, e.g. "Bitcoin"
	Symbol    string          `json:"symbol"`     // Pair symbol, e.g. "BTC/USDT"
	Price     decimal.Decimal `json:"price"`      // Last simulated price
	Change24h decimal.Decimal `json:"change_24h"` // Simulated 24h change, percent
	Volume    string          `json:"volume"`     // Display volume, e.g. "1.2B"
}

// OrderBookLevel is one price level of the simulated order book.
type OrderBookLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
	Total  decimal.Decimal `json:"total"` // Price * Amount
}

// OrderBook is a simulated depth snapshot: asks ascending, bids descending.
type OrderBook struct {
	Asks      []OrderBookLevel `json:"asks"`
	Bids      []OrderBookLevel `json:"bids"`
	LastPrice decimal.Decimal  `json:"last_price"`
}
