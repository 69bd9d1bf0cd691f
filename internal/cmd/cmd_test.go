package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		gatewayURL = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func gatewayStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/ask":
			var req struct {
				Question string `json:"question"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.Question != "what is 2+2" {
				t.Errorf("unexpected question %q", req.Question)
			}
			w.Write([]byte(`{"answer":"4"}`))
		case "/api/solve":
			if _, _, err := r.FormFile("screenshot"); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"No file uploaded"}`))
				return
			}
			w.Write([]byte(`{"solution":"x = 3"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "snapctl version dev") || !strings.Contains(out, "Git commit: unknown") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestAskCommand(t *testing.T) {
	server := gatewayStub(t)

	out, err := execute(t, "ask", "--gateway", server.URL, "what", "is", "2+2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "4" {
		t.Errorf("expected 4, got %q", out)
	}
}

func TestSolveCommand(t *testing.T) {
	server := gatewayStub(t)

	path := filepath.Join(t.TempDir(), "shot.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "solve", "--gateway", server.URL, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "x = 3" {
		t.Errorf("expected solution, got %q", out)
	}
}

func TestSolveCommand_MissingFile(t *testing.T) {
	server := gatewayStub(t)

	if _, err := execute(t, "solve", "--gateway", server.URL, filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestOverlayCommand_WithoutRunner(t *testing.T) {
	if _, err := execute(t, "overlay"); err == nil {
		t.Error("expected error when no overlay runner is set")
	}
}

func TestEventsCommand_RequiresRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	_, err := execute(t, "events")
	if err == nil || !strings.Contains(err.Error(), "REDIS_ADDR") {
		t.Errorf("expected REDIS_ADDR error, got %v", err)
	}
}
