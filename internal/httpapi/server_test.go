package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antoniostano/taskpal/internal/config"
)

func TestHealthEndpoint(t *testing.T) {
	srv := New(config.Config{AssemblyAIAPIKey: "key"})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want 200", res.StatusCode)
	}

	var body struct {
		Status         string `json:"status"`
		VoiceEnabled   bool   `json:"voice_enabled"`
		HistoryEnabled bool   `json:"history_enabled"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode /healthz body: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("status = %q, want ok", body.Status)
	}
	if !body.VoiceEnabled {
		t.Fatalf("voice_enabled = false, want true with api key set")
	}
	if body.HistoryEnabled {
		t.Fatalf("history_enabled = true, want false without DATABASE_URL")
	}
}

func TestReadyEndpoint(t *testing.T) {
	ts := httptest.NewServer(New(config.Config{}).Router())
	defer ts.Close()

	res, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET /readyz status = %d, want 200", res.StatusCode)
	}
}
