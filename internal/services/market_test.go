package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradex/tradex-wallet/internal/services"
)

func TestMarketService_Tickers(t *testing.T) {
	svc := services.NewMarketService(1)

	tickers := svc.Tickers()
	require.Len(t, tickers, 7)

	symbols := make(map[string]bool, len(tickers))
	for _, tk := range tickers {
		symbols[tk.Symbol] = true
		assert.True(t, tk.Price.IsPositive(), "price for %s", tk.Symbol)
		assert.NotEmpty(t, tk.Name)
		assert.NotEmpty(t, tk.Volume)
	}
	for _, symbol := range []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "XRP/USDT", "ADA/USDT", "SOL/USDT", "DOT/USDT"} {
		assert.True(t, symbols[symbol], "missing %s", symbol)
	}
}

func TestMarketService_Tick_MovesPrices(t *testing.T) {
	svc := services.NewMarketService(time.Now().UnixNano())

	before := svc.Tickers()
	svc.Tick()
	after := svc.Tickers()

	moved := false
	for i := range before {
		ratio := after[i].Price.Div(before[i].Price)
		assert.True(t, ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.994)), "%s fell too far", before[i].Symbol)
		assert.True(t, ratio.LessThanOrEqual(decimal.NewFromFloat(1.006)), "%s rose too far", before[i].Symbol)
		if !after[i].Price.Equal(before[i].Price) {
			moved = true
		}
	}
	assert.True(t, moved, "tick left every price unchanged")
}

func TestMarketService_OrderBookShape(t *testing.T) {
	svc := services.NewMarketService(42)
	svc.Tick()

	book := svc.OrderBook()
	require.Len(t, book.Asks, 12)
	require.Len(t, book.Bids, 12)
	assert.True(t, book.LastPrice.IsPositive())

	for i := range book.Asks {
		assert.True(t, book.Asks[i].Price.GreaterThanOrEqual(book.LastPrice), "ask %d below last price", i)
		assert.True(t, book.Asks[i].Amount.IsPositive())
		assert.True(t, book.Asks[i].Total.Equal(book.Asks[i].Price.Mul(book.Asks[i].Amount).Round(2)))
		if i > 0 {
			assert.True(t, book.Asks[i].Price.GreaterThanOrEqual(book.Asks[i-1].Price), "asks not ascending at %d", i)
		}
	}
	for i := range book.Bids {
		assert.True(t, book.Bids[i].Price.LessThanOrEqual(book.LastPrice), "bid %d above last price", i)
		assert.True(t, book.Bids[i].Amount.IsPositive())
		if i > 0 {
			assert.True(t, book.Bids[i].Price.LessThanOrEqual(book.Bids[i-1].Price), "bids not descending at %d", i)
		}
	}
}

func TestMarketService_SnapshotsAreCopies(t *testing.T) {
	svc := services.NewMarketService(7)

	tickers := svc.Tickers()
	original := tickers[0].Price
	tickers[0].Price = decimal.NewFromInt(-1)

	again := svc.Tickers()
	assert.True(t, again[0].Price.Equal(original), "caller mutation leaked into the service")
}

func TestMarketService_Subscribe(t *testing.T) {
	svc := services.NewMarketService(7)

	ch, cancel := svc.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go svc.Run(ctx, 10*time.Millisecond)

	select {
	case tickers := <-ch:
		assert.Len(t, tickers, 7)
	case <-time.After(2 * time.Second):
		t.Fatal("no ticker update delivered")
	}

	cancel()
	cancel()
}
