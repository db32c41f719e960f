package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
)

type checker observability.Health

func (c checker) CheckHealth(context.Context) observability.Health { return observability.Health(c) }

func newTestServer(checkers ...observability.HealthChecker) *Server {
	cfg := Config{}
	cfg.ApplyDefaults()
	s := New(cfg, logger.Nop())
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints("scribe", "test", checkers...)
	return s
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		status observability.HealthStatus
		want   int
	}{
		{"up", observability.HealthStatusUp, http.StatusOK},
		{"degraded", observability.HealthStatusDegraded, http.StatusOK},
		{"down", observability.HealthStatusDown, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(checker{Name: "storage", Status: tc.status})
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rr.Code)
			}
			var body observability.ServiceHealth
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Status != tc.status || len(body.Components) != 1 {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestLivenessAndRequestID(t *testing.T) {
	s := newTestServer()
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/livez", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id on every response")
	}
}

func TestPanicBecomesInternalError(t *testing.T) {
	s := newTestServer()
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body errors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Error.Code != errors.ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR body, got %s", rr.Body.String())
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	RespondWithError(c, errors.UnsupportedVendor("asr", "nope"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !c.IsAborted() {
		t.Error("expected the context to be aborted")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if got := cfg.MaxBodyBytes(); got != 500<<20 {
		t.Errorf("expected 500MB, got %d", got)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("expected no write timeout by default, got %d", cfg.WriteTimeout)
	}

	cfg.MaxBodySize = "lots"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an unparsable body size to fail")
	}
	cfg.MaxBodySize = "1MB"
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected an out of range port to fail")
	}
}
