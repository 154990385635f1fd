package services

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradex/tradex-wallet/internal/logger"
	"github.com/tradex/tradex-wallet/internal/models"
)

const orderBookDepth = 12

// MarketService simulates market data for the demo: ticker prices move on a
// small random walk and the order book is regenerated around the last BTC
// price. Nothing here touches a real feed.
type MarketService struct {
	mu      sync.RWMutex
	rng     *rand.Rand
	tickers []models.Ticker
	book    models.OrderBook

	subMu  sync.Mutex
	subs   map[int]chan []models.Ticker
	nextID int
}

// NewMarketService seeds the simulator. Pass a fixed seed for deterministic
// sequences in tests, or time.Now().UnixNano() otherwise.
func NewMarketService(seed int64) *MarketService {
	s := &MarketService{
		rng:  rand.New(rand.NewSource(seed)),
		subs: make(map[int]chan []models.Ticker),
		tickers: []models.Ticker{
			{Name: "Bitcoin", Symbol: "BTC/USDT", Price: decimal.NewFromFloat(60123.45), Change24h: decimal.NewFromFloat(2.5), Volume: "1.2B"},
			{Name: "Ethereum", Symbol: "ETH/USDT", Price: decimal.NewFromFloat(3456.78), Change24h: decimal.NewFromFloat(1.8), Volume: "430.5M"},
			{Name: "Binance Coin", Symbol: "BNB/USDT", Price: decimal.NewFromFloat(456.78), Change24h: decimal.NewFromFloat(-0.5), Volume: "120.3M"},
			{Name: "XRP", Symbol: "XRP/USDT", Price: decimal.NewFromFloat(0.5673), Change24h: decimal.NewFromFloat(3.2), Volume: "89.7M"},
			{Name: "Cardano", Symbol: "ADA/USDT", Price: decimal.NewFromFloat(0.5123), Change24h: decimal.NewFromFloat(-1.2), Volume: "45.6M"},
			{Name: "Solana", Symbol: "SOL/USDT", Price: decimal.NewFromFloat(132.45), Change24h: decimal.NewFromFloat(4.7), Volume: "234.1M"},
			{Name: "Polkadot", Symbol: "DOT/USDT", Price: decimal.NewFromFloat(7.89), Change24h: decimal.NewFromFloat(-0.8), Volume: "22.3M"},
		},
	}
	s.regenerate()
	return s
}

// Run advances the simulation on the given interval until ctx is done,
// broadcasting each new ticker set to subscribers.
func (s *MarketService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Log.Infow("market simulator started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("market simulator stopped")
			return
		case <-ticker.C:
			s.Tick()
			s.broadcast(s.Tickers())
		}
	}
}

// Tick advances every ticker one random-walk step and rebuilds the book.
func (s *MarketService) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tickers {
		// Price moves up to 0.5% either way, 24h change drifts up to 0.3.
		drift := decimal.NewFromFloat(s.rng.Float64() * 0.005)
		if s.rng.Float64() < 0.5 {
			drift = drift.Neg()
		}
		s.tickers[i].Price = s.tickers[i].Price.Mul(decimal.NewFromInt(1).Add(drift))

		delta := decimal.NewFromFloat(s.rng.Float64() * 0.3)
		if s.rng.Float64() < 0.5 {
			delta = delta.Neg()
		}
		s.tickers[i].Change24h = s.tickers[i].Change24h.Add(delta)
	}

	s.regenerate()
}

// regenerate rebuilds the order book around the last BTC price.
// Caller must hold mu.
func (s *MarketService) regenerate() {
	basePrice := s.tickers[0].Price

	asks := make([]models.OrderBookLevel, 0, orderBookDepth)
	bids := make([]models.OrderBookLevel, 0, orderBookDepth)

	for i := 0; i < orderBookDepth; i++ {
		step := decimal.NewFromFloat(float64(i)*2 + s.rng.Float64()*2)
		amount := decimal.NewFromFloat(0.01 + s.rng.Float64()*2).Round(6)

		askPrice := basePrice.Add(step).Round(2)
		asks = append(asks, models.OrderBookLevel{
			Price:  askPrice,
			Amount: amount,
			Total:  askPrice.Mul(amount).Round(2),
		})

		bidAmount := decimal.NewFromFloat(0.01 + s.rng.Float64()*2).Round(6)
		bidPrice := basePrice.Sub(step).Round(2)
		bids = append(bids, models.OrderBookLevel{
			Price:  bidPrice,
			Amount: bidAmount,
			Total:  bidPrice.Mul(bidAmount).Round(2),
		})
	}

	sort.Slice(asks, func(i, j int) bool { return asks[i].Price.LessThan(asks[j].Price) })
	sort.Slice(bids, func(i, j int) bool { return bids[j].Price.LessThan(bids[i].Price) })

	s.book = models.OrderBook{
		Asks:      asks,
		Bids:      bids,
		LastPrice: basePrice.Round(2),
	}
}

// Tickers returns a copy of the current ticker set.
func (s *MarketService) Tickers() []models.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Ticker, len(s.tickers))
	copy(out, s.tickers)
	return out
}

// OrderBook returns a copy of the current depth snapshot.
func (s *MarketService) OrderBook() models.OrderBook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book := models.OrderBook{
		Asks:      make([]models.OrderBookLevel, len(s.book.Asks)),
		Bids:      make([]models.OrderBookLevel, len(s.book.Bids)),
		LastPrice: s.book.LastPrice,
	}
	copy(book.Asks, s.book.Asks)
	copy(book.Bids, s.book.Bids)
	return book
}

// Subscribe returns a channel receiving each new ticker set and a cancel
// function. Slow subscribers miss updates rather than blocking the loop.
func (s *MarketService) Subscribe() (<-chan []models.Ticker, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan []models.Ticker, 4)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
			s.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (s *MarketService) broadcast(tickers []models.Ticker) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- tickers:
		default:
		}
	}
}
