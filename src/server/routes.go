package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	logger "github.com/sirupsen/logrus"

	"papertrader/src/handler"
)

// NewRouter mounts the account API, metrics and the live event stream.
// ws may be nil to disable /ws.
func NewRouter(trader handler.Trader, ws http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})
	r.Handle("/metrics", promhttp.Handler())
	if ws != nil {
		r.Get("/ws", ws)
	}

	r.Get("/account", handler.AccountSummaryHandler(trader))
	r.Post("/account/reset", handler.ResetAccountHandler(trader))
	r.Get("/positions", handler.OpenPositionsHandler(trader))
	r.Post("/positions/{token}/close", handler.ClosePositionHandler(trader))
	r.Get("/history", handler.HistoryHandler(trader))
	r.Get("/parameters", handler.GetParametersHandler(trader))
	r.Put("/parameters", handler.UpdateParametersHandler(trader))
	r.Put("/mode", handler.SetModeHandler(trader))
	r.Post("/signals", handler.SignalHandler(trader))
	r.Post("/signals/text", handler.TextSignalHandler(trader))
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.WithFields(logger.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}
