package routers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codebuds/internal/api"
	"codebuds/internal/exec"
	"codebuds/internal/session"
	"codebuds/internal/utils"
)

func TestRouterRoutes(t *testing.T) {
	logger := utils.NewNopLogger()
	hub := session.NewHub(logger, time.Minute, nil)
	h := api.NewHandlers(logger, hub, exec.NewRunner("http://127.0.0.1:1"), 64)

	server := httptest.NewServer(New(h))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/v1/rooms/unknown")
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from rooms lookup, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", resp.StatusCode)
	}
}
