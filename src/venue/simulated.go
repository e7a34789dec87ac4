package venue

import (
	"context"
	"encoding/hex"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

var (
	defaultSimPrice = decimal.RequireFromString("0.0001")
	minSimPrice     = decimal.RequireFromString("0.000001")
	priceFloor      = decimal.New(1, -12)
)

// Simulated is a paper venue: a seeded random walk for prices, random but
// plausible safety metrics, and instant fills.
type Simulated struct {
	mu           sync.Mutex
	rng          *rand.Rand
	prices       map[string]decimal.Decimal
	outages      map[string]int
	upProb       float64
	honeypotProb float64
	cache        *safetyCache
	logger       *logrus.Entry
	now          func() time.Time
}

func NewSimulated(cfg Config, logger *logrus.Entry) *Simulated {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	seed := cfg.SimSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	upProb := cfg.SimUpProb
	if upProb <= 0 || upProb > 1 {
		upProb = 0.7
	}

	return &Simulated{
		rng:          rand.New(rand.NewSource(seed)),
		prices:       make(map[string]decimal.Decimal),
		outages:      make(map[string]int),
		upProb:       upProb,
		honeypotProb: cfg.SimHoneypotPct,
		cache:        newSafetyCache(cfg.SafetyCacheTTL),
		logger:       logger.WithField("component", "SimulatedVenue"),
		now:          time.Now,
	}
}

// BasePrice derives a deterministic starting price from the last eight hex
// digits of the token address.
func BasePrice(tokenID string) decimal.Decimal {
	if len(tokenID) < 8 {
		return defaultSimPrice
	}
	seed, err := strconv.ParseUint(tokenID[len(tokenID)-8:], 16, 64)
	if err != nil {
		return defaultSimPrice
	}
	p := decimal.NewFromInt(int64(seed)).Shift(-10)
	if p.LessThan(minSimPrice) {
		return minSimPrice
	}
	return p
}

// GetPrice returns the base price on first sight of a token and then moves
// it: up 0.1% to 5% with probability upProb, otherwise down 0.1% to 3%.
func (s *Simulated) GetPrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := s.outages[tokenID]; n > 0 {
		s.outages[tokenID] = n - 1
		return decimal.Zero, ErrPriceUnavailable
	}

	current, ok := s.prices[tokenID]
	if !ok {
		current = BasePrice(tokenID)
		s.prices[tokenID] = current
		return current, nil
	}

	var change float64
	if s.rng.Float64() < s.upProb {
		change = 0.001 + s.rng.Float64()*0.049
	} else {
		change = -(0.001 + s.rng.Float64()*0.029)
	}
	next := current.Mul(decimal.NewFromFloat(1 + change)).Round(12)
	if next.LessThan(priceFloor) {
		next = priceFloor
	}
	s.prices[tokenID] = next
	return next, nil
}

// SetPrice pins the current price of a token; the walk continues from it.
func (s *Simulated) SetPrice(tokenID string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[tokenID] = price
}

// FailNext makes the next n price requests for tokenID fail.
func (s *Simulated) FailNext(tokenID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outages[tokenID] = n
}

func (s *Simulated) CheckSafety(ctx context.Context, tokenID string) (model.SafetyReport, error) {
	if err := ctx.Err(); err != nil {
		return model.SafetyReport{}, err
	}
	if r, ok := s.cache.get(tokenID); ok {
		return r, nil
	}

	s.mu.Lock()
	buyTax := s.uniform(0, 20)
	report := model.SafetyReport{
		TokenID:      tokenID,
		LiquidityUsd: decimal.NewFromFloat(s.uniform(10000, 2000000)).Round(2),
		BuyTaxPct:    decimal.NewFromFloat(buyTax).Round(1),
		SellTaxPct:   decimal.NewFromFloat(s.uniform(buyTax, buyTax+10)).Round(1),
		HolderCount:  10 + s.rng.Intn(4991),
		TopHolderPct: decimal.NewFromFloat(s.uniform(10, 80)).Round(1),
		IsHoneypot:   s.rng.Float64() < s.honeypotProb,
		CheckedAt:    s.now(),
	}
	s.mu.Unlock()

	s.cache.put(report)
	s.logger.WithFields(logrus.Fields{
		"token":     tokenID,
		"liquidity": report.LiquidityUsd.String(),
		"honeypot":  report.IsHoneypot,
	}).Debug("simulated safety report")
	return report, nil
}

// SetSafety overrides the cached verdict for a token.
func (s *Simulated) SetSafety(report model.SafetyReport) {
	if report.CheckedAt.IsZero() {
		report.CheckedAt = s.now()
	}
	s.cache.put(report)
}

func (s *Simulated) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderReceipt, error) {
	if err := ctx.Err(); err != nil {
		return model.OrderReceipt{}, err
	}
	id := uuid.New()
	receipt := model.OrderReceipt{
		TxID:        "0x" + hex.EncodeToString(id[:]),
		Status:      "confirmed",
		SubmittedAt: s.now(),
	}
	s.logger.WithFields(logrus.Fields{
		"token": req.TokenID,
		"side":  req.Side,
		"usd":   req.AmountUsd.String(),
		"tx":    receipt.TxID,
	}).Info("simulated order filled")
	return receipt, nil
}

func (s *Simulated) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
