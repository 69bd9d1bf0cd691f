package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func readiness(t *testing.T, h *Handler) (int, HealthResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Readiness(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	h := NewHandler("test")
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := NewHandler("1.2.3",
		RedisCheck(client),
		PingCheck("storage", true, func(context.Context) error { return nil }),
		ConfigCheck("inference", true, ""),
	)

	code, resp := readiness(t, h)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", resp.Version)
	}
	if len(resp.Components) != 3 {
		t.Errorf("expected 3 components, got %d", len(resp.Components))
	}
}

func TestReadiness_CriticalFailure(t *testing.T) {
	h := NewHandler("test",
		ConfigCheck("inference", true, "OPENAI_API_KEY is not set"),
		PingCheck("storage", false, func(context.Context) error { return nil }),
	)

	code, resp := readiness(t, h)
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if resp.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %s", resp.Status)
	}
	if resp.Components["inference"].Error != "OPENAI_API_KEY is not set" {
		t.Errorf("unexpected component %+v", resp.Components["inference"])
	}
}

func TestReadiness_NonCriticalFailureDegrades(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	h := NewHandler("test",
		RedisCheck(client),
		PingCheck("gateway", false, func(context.Context) error { return errors.New("refused") }),
	)

	code, resp := readiness(t, h)
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", resp.Status)
	}
	if resp.Components["gateway"].Error != "gateway unreachable" {
		t.Errorf("unexpected gateway status %+v", resp.Components["gateway"])
	}
	if resp.Components["redis"].Status != StatusUnhealthy {
		t.Errorf("expected redis unhealthy, got %+v", resp.Components["redis"])
	}
}

func TestRedisCheck_NotConfigured(t *testing.T) {
	status := RedisCheck(nil).Run(context.Background())
	if status.Status != StatusUnhealthy || status.Error != "redis not configured" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestMiddleware_CountsRequests(t *testing.T) {
	e := echo.New()
	h := NewHandler("test")
	e.Use(h.Middleware())
	h.RegisterRoutes(e)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	}

	_, resp := readiness(t, h)
	if resp.Stats.Requests.TotalRequests != 3 {
		t.Errorf("expected 3 requests, got %d", resp.Stats.Requests.TotalRequests)
	}
	if resp.Stats.Requests.ActiveConnections != 0 {
		t.Errorf("expected 0 active connections, got %d", resp.Stats.Requests.ActiveConnections)
	}
}
