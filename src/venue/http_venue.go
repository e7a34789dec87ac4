package venue

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"papertrader/src/model"
)

const (
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

type priceResponse struct {
	TokenID string          `json:"tokenId"`
	Price   decimal.Decimal `json:"price"`
}

// HTTPVenue talks to a quote/safety/order service over REST:
//
//	GET  /tokens/{tokenId}/price
//	GET  /tokens/{tokenId}/safety
//	POST /orders
type HTTPVenue struct {
	http   *resty.Client
	cache  *safetyCache
	logger *logrus.Entry
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == http.StatusTooManyRequests {
		return true
	}
	if code == http.StatusRequestTimeout {
		return true
	}
	return false
}

func NewHTTPVenue(cfg Config, logger *logrus.Entry) *HTTPVenue {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}

	return &HTTPVenue{
		http:   client,
		cache:  newSafetyCache(cfg.SafetyCacheTTL),
		logger: logger.WithField("component", "HTTPVenue"),
	}
}

// GetPrice maps every transport or decoding failure to ErrPriceUnavailable.
func (v *HTTPVenue) GetPrice(ctx context.Context, tokenID string) (decimal.Decimal, error) {
	var out priceResponse
	resp, err := v.http.R().
		SetContext(ctx).
		SetPathParam("tokenId", tokenID).
		SetResult(&out).
		Get("/tokens/{tokenId}/price")
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, tokenID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: %s: HTTP %d", ErrPriceUnavailable, tokenID, resp.StatusCode())
	}
	if !out.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive price %s", ErrPriceUnavailable, tokenID, out.Price)
	}
	return out.Price, nil
}

func (v *HTTPVenue) CheckSafety(ctx context.Context, tokenID string) (model.SafetyReport, error) {
	if r, ok := v.cache.get(tokenID); ok {
		return r, nil
	}

	var report model.SafetyReport
	resp, err := v.http.R().
		SetContext(ctx).
		SetPathParam("tokenId", tokenID).
		SetResult(&report).
		Get("/tokens/{tokenId}/safety")
	if err != nil {
		return model.SafetyReport{}, fmt.Errorf("safety check %s: %w", tokenID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return model.SafetyReport{}, fmt.Errorf("safety check %s: HTTP %d: %s", tokenID, resp.StatusCode(), string(resp.Body()))
	}

	report.TokenID = tokenID
	if report.CheckedAt.IsZero() {
		report.CheckedAt = time.Now()
	}
	v.cache.put(report)
	return report, nil
}

func (v *HTTPVenue) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderReceipt, error) {
	var receipt model.OrderReceipt
	resp, err := v.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&receipt).
		Post("/orders")
	if err != nil {
		return model.OrderReceipt{}, fmt.Errorf("submit order %s: %w", req.TokenID, err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return model.OrderReceipt{}, fmt.Errorf("submit order %s: HTTP %d: %s", req.TokenID, resp.StatusCode(), string(resp.Body()))
	}

	v.logger.WithFields(logrus.Fields{
		"token": req.TokenID,
		"side":  req.Side,
		"tx":    receipt.TxID,
	}).Info("order submitted")
	return receipt, nil
}

// New builds the venue selected by cfg.Mode.
func New(cfg Config, logger *logrus.Entry) (Venue, error) {
	switch cfg.Mode {
	case "", ModeSimulated:
		return NewSimulated(cfg, logger), nil
	case ModeHTTP:
		return NewHTTPVenue(cfg, logger), nil
	default:
		return nil, fmt.Errorf("venue mode %q not supported", cfg.Mode)
	}
}
