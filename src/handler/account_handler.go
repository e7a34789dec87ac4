package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/model"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type accountQuerier interface {
	GetAccountSummary() model.AccountSummary
	GetOpenPositions() []model.OpenPositionView
	GetHistory(limit, offset int) model.HistoryPage
}

type accountResetter interface {
	GetAccountSummary() model.AccountSummary
	ResetAccount(ctx context.Context, initialBalance decimal.Decimal) error
}

type parameterStore interface {
	Parameters() model.TradingParameters
	UpdateTradingParameters(ctx context.Context, params model.TradingParameters) error
}

type modeSwitcher interface {
	TradingMode() (paused bool, autoExecution bool)
	SetTradingMode(ctx context.Context, paused, autoExecution *bool) error
}

type resetPayload struct {
	InitialBalance *decimal.Decimal `json:"initialBalance"`
}

type modePayload struct {
	Paused        *bool `json:"paused"`
	AutoExecution *bool `json:"autoExecution"`
}

type modeResponse struct {
	Paused        bool `json:"paused"`
	AutoExecution bool `json:"autoExecution"`
}

// AccountSummaryHandler returns the dashboard aggregate.
func AccountSummaryHandler(q accountQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, q.GetAccountSummary())
	}
}

func OpenPositionsHandler(q accountQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positions := q.GetOpenPositions()
		if positions == nil {
			positions = []model.OpenPositionView{}
		}
		writeJSON(w, http.StatusOK, positions)
	}
}

// HistoryHandler pages the trade history, newest first.
// Supports limit (default 50, max 500) and offset.
func HistoryHandler(q accountQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = min(parsed, maxHistoryLimit)
		}

		offset := 0
		if offsetParam := r.URL.Query().Get("offset"); offsetParam != "" {
			parsed, err := strconv.Atoi(offsetParam)
			if err != nil || parsed < 0 {
				writeError(w, http.StatusBadRequest, "invalid offset")
				return
			}
			offset = parsed
		}

		page := q.GetHistory(limit, offset)
		if page.Trades == nil {
			page.Trades = []model.TradeRecord{}
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// ResetAccountHandler drops every position and starts a new account. An empty body
// keeps the current initial balance.
func ResetAccountHandler(a accountResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resetPayload
		if err := decodeBody(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			logger.WithError(err).Warn("invalid reset payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		balance := a.GetAccountSummary().InitialBalance
		if payload.InitialBalance != nil {
			balance = *payload.InitialBalance
		}
		if err := a.ResetAccount(r.Context(), balance); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a.GetAccountSummary())
	}
}

func GetParametersHandler(p parameterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.Parameters())
	}
}

// UpdateParametersHandler replaces the trading parameters. Fields missing
// from the payload keep their current value.
func UpdateParametersHandler(p parameterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := p.Parameters()
		if err := decodeBody(r, &params); err != nil {
			logger.WithError(err).Warn("invalid parameters payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := p.UpdateTradingParameters(r.Context(), params); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p.Parameters())
	}
}

func SetModeHandler(m modeSwitcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload modePayload
		if err := decodeBody(r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if payload.Paused == nil && payload.AutoExecution == nil {
			writeError(w, http.StatusBadRequest, "paused or autoExecution is required")
			return
		}
		if err := m.SetTradingMode(r.Context(), payload.Paused, payload.AutoExecution); err != nil {
			writeDomainError(w, err)
			return
		}
		paused, auto := m.TradingMode()
		writeJSON(w, http.StatusOK, modeResponse{Paused: paused, AutoExecution: auto})
	}
}
