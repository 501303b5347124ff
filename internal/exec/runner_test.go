package exec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codebuds/internal/models"
)

func TestRunForwardsToSandbox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req models.RunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Language != models.LangPython || req.Code != "print(1)" {
			t.Fatalf("unexpected payload: %#v", req)
		}
		_ = json.NewEncoder(w).Encode(models.RunResult{Stdout: "1\n", Exit: 0})
	}))
	defer server.Close()

	out, err := NewRunner(server.URL).Run(context.Background(), models.RunRequest{
		Language: models.LangPython,
		Code:     "print(1)",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Stdout != "1\n" || out.Exit != 0 {
		t.Fatalf("unexpected result: %#v", out)
	}
}

func TestRunSandboxError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewRunner(server.URL).Run(context.Background(), models.RunRequest{})
	if err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}

func TestRunSandboxUnreachable(t *testing.T) {
	_, err := NewRunner("http://127.0.0.1:1").Run(context.Background(), models.RunRequest{})
	if err == nil {
		t.Fatalf("expected error for unreachable sandbox")
	}
}

func TestRunMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer server.Close()

	_, err := NewRunner(server.URL).Run(context.Background(), models.RunRequest{})
	if err == nil {
		t.Fatalf("expected decode error")
	}
}
