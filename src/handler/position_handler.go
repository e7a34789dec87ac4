package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/model"
)

type positionCloser interface {
	ClosePosition(ctx context.Context, tokenID, reason string) (*model.TradeRecord, error)
}

type signalReceiver interface {
	HandleSignal(ctx context.Context, sig model.Signal) (model.Position, error)
	HandleText(ctx context.Context, text, source, dedupKey string) (model.Position, error)
}

type closePayload struct {
	Reason string `json:"reason"`
}

type textSignalPayload struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	DedupKey string `json:"dedupKey"`
}

// ClosePositionHandler closes the open position of {token} at the current quote.
func ClosePositionHandler(c positionCloser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			writeError(w, http.StatusBadRequest, "token is required")
			return
		}

		var payload closePayload
		if err := decodeBody(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		rec, err := c.ClosePosition(r.Context(), token, payload.Reason)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// SignalHandler accepts a structured signal and returns the opened position.
func SignalHandler(s signalReceiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sig model.Signal
		if err := decodeBody(r, &sig); err != nil {
			logger.WithError(err).Warn("invalid signal payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if strings.TrimSpace(sig.TokenID) == "" {
			writeError(w, http.StatusBadRequest, "tokenId is required")
			return
		}
		if sig.Source == "" {
			sig.Source = "http"
		}

		pos, err := s.HandleSignal(r.Context(), sig)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, pos)
	}
}

// TextSignalHandler parses a free-text message into a signal.
func TextSignalHandler(s signalReceiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload textSignalPayload
		if err := decodeBody(r, &payload); err != nil || strings.TrimSpace(payload.Text) == "" {
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if payload.Source == "" {
			payload.Source = "http"
		}

		pos, err := s.HandleText(r.Context(), payload.Text, payload.Source, payload.DedupKey)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, pos)
	}
}
