package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks liveness details and serves them as JSON.
type HealthChecker struct {
	mu        sync.RWMutex
	lastOrder time.Time
	errors    []string
}

// HealthStatus is the JSON body of the health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	LastOrder time.Time `json:"last_order,omitempty"`
	Uptime    string    `json:"uptime"`
	Errors    []string  `json:"errors,omitempty"`
}

// NewHealthChecker creates a new health checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// UpdateLastOrder records the time of the most recent forwarded order.
func (h *HealthChecker) UpdateLastOrder(t time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastOrder = t
}

// AddError appends an error to the health report, keeping the last ten.
func (h *HealthChecker) AddError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if len(h.errors) > 0 {
		status = "degraded"
	}

	health := HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		LastOrder: h.lastOrder,
		Uptime:    time.Since(startTime).String(),
		Errors:    h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}
