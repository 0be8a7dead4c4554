package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"binance-webhook-bridge/internal/monitoring"
	"binance-webhook-bridge/internal/notifications"
	"binance-webhook-bridge/internal/trader"
	"binance-webhook-bridge/pkg/types"
)

// OrderPlacer is the slice of the trader the webhook handler needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, signal types.TradeSignal) (*types.TradeOutcome, error)
}

// Config holds the inbound HTTP policy knobs.
type Config struct {
	// RateLimit is the sustained number of webhook requests allowed per
	// second, which is also the burst capacity. Zero disables throttling.
	RateLimit int
}

// Server is the inbound HTTP shell: it decodes webhook payloads, hands them
// to the trader, and maps the error taxonomy onto status codes.
type Server struct {
	router   *mux.Router
	trader   OrderPlacer
	health   *monitoring.HealthChecker
	notifier notifications.Notifier
	limiter  *tokenBucket
	log      *logrus.Logger
}

// New creates a server and registers its routes.
func New(placer OrderPlacer, health *monitoring.HealthChecker, notifier notifications.Notifier, cfg Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	s := &Server{
		trader:   placer,
		health:   health,
		notifier: notifier,
		log:      log,
	}

	webhook := http.Handler(http.HandlerFunc(s.handleWebhook))
	if cfg.RateLimit > 0 {
		s.limiter = newTokenBucket(cfg.RateLimit, cfg.RateLimit)
		webhook = s.withRateLimit(webhook)
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.Handle("/health", health).Methods(http.MethodGet)
	r.Handle("/webhook", webhook).Methods(http.MethodPost)
	r.Use(s.withRecovery)
	s.router = r
	return s
}

// Handler returns the route handler for mounting into an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("webhook bridge is running\n"))
}

// webhookPayload mirrors the inbound JSON body. Size is a pointer so a
// missing field can be told apart from zero.
type webhookPayload struct {
	Symbol string   `json:"symbol"`
	Action string   `json:"action"`
	Size   *float64 `json:"size"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.reject(w, http.StatusBadRequest, "malformed JSON body", "validation")
		return
	}
	if payload.Symbol == "" || payload.Action == "" {
		s.reject(w, http.StatusBadRequest, "symbol and action are required", "validation")
		return
	}
	if payload.Size == nil || *payload.Size <= 0 || *payload.Size > 100 {
		s.reject(w, http.StatusBadRequest, "size must be a number in (0, 100]", "validation")
		return
	}

	signal := types.TradeSignal{
		Symbol:  payload.Symbol,
		Action:  payload.Action,
		SizePct: *payload.Size,
	}

	log := s.log.WithFields(logrus.Fields{
		"symbol": signal.Symbol,
		"action": signal.Action,
		"size":   signal.SizePct,
	})
	log.Info("webhook received")

	outcome, err := s.trader.PlaceOrder(r.Context(), signal)
	if err != nil {
		s.respondError(w, log, outcome, err)
		return
	}

	s.recordOutcome(outcome)
	monitoring.RecordWebhook("success")
	log.Info("order forwarded")
	s.notify(notifications.LevelSuccess, "%s %s: %s qty %s spent %s",
		outcome.Order.Side, outcome.Order.Symbol, outcome.Order.Status,
		trimZeros(outcome.Order.ExecutedQty), trimZeros(outcome.Order.CumQuoteQty))

	w.Header().Set("Content-Type", "application/json")
	if outcome.TakeProfit != nil {
		// Both the buy and its take-profit follow-up go back together.
		json.NewEncoder(w).Encode(map[string]json.RawMessage{
			"order":      outcome.Order.Raw,
			"takeProfit": outcome.TakeProfit.Raw,
		})
		return
	}
	// Raw exchange response, passed through verbatim.
	w.Write(outcome.Order.Raw)
}

// respondError maps the trader's error taxonomy onto status codes:
// validation 400, policy rejection 422, upstream 502, anything else 500.
func (s *Server) respondError(w http.ResponseWriter, log *logrus.Entry, outcome *types.TradeOutcome, err error) {
	var validationErr *trader.ValidationError
	var policyErr *trader.PolicyError
	var upstreamErr *trader.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		log.WithError(err).Warn("webhook rejected")
		s.reject(w, http.StatusBadRequest, err.Error(), "validation")
	case errors.As(err, &policyErr):
		log.WithError(err).Warn("order rejected by policy")
		monitoring.RecordRejection(policyErr.Rule)
		monitoring.RecordWebhook("rejected")
		s.notify(notifications.LevelWarning, "order rejected: %s", err.Error())
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
			"rule":  policyErr.Rule,
		})
	case errors.As(err, &upstreamErr):
		log.WithError(err).Error("exchange call failed")
		s.health.AddError(err.Error())
		monitoring.RecordError("upstream")
		monitoring.RecordWebhook("error")
		s.notify(notifications.LevelError, "exchange call failed: %s", err.Error())
		body := map[string]interface{}{"error": err.Error()}
		if outcome != nil && outcome.Order != nil {
			// The primary order went through before the failure (take-profit
			// follow-up); report it alongside the error.
			s.recordOutcome(outcome)
			body["order"] = outcome.Order.Raw
		}
		writeJSON(w, http.StatusBadGateway, body)
	default:
		log.WithError(err).Error("internal error")
		s.health.AddError(err.Error())
		monitoring.RecordError("internal")
		monitoring.RecordWebhook("error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) reject(w http.ResponseWriter, status int, msg, errType string) {
	monitoring.RecordError(errType)
	monitoring.RecordWebhook("rejected")
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) recordOutcome(outcome *types.TradeOutcome) {
	if outcome == nil || outcome.Order == nil {
		return
	}
	s.health.UpdateLastOrder(time.Now())
	monitoring.RecordOrder(outcome.Order.Symbol, string(outcome.Order.Side), string(outcome.Order.Type))
	if outcome.Order.Side == types.SideBuy {
		monitoring.RecordOrderAmount(outcome.Order.Symbol, outcome.Order.CumQuoteQty)
	}
	if outcome.TakeProfit != nil {
		monitoring.RecordOrder(outcome.TakeProfit.Symbol, string(outcome.TakeProfit.Side), string(outcome.TakeProfit.Type))
	}
}

// notify delivers an alert in the background. Delivery failures are logged
// and never block or fail the webhook response.
func (s *Server) notify(level notifications.Level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.SendAlert(ctx, level, message); err != nil {
			s.log.WithError(err).Warn("failed to send notification")
		}
	}()
}

func trimZeros(x float64) string {
	return fmt.Sprintf("%g", x)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
