package websocket

import (
	"net/http"
	"testing"
)

func TestUpgraderCheckOrigin(t *testing.T) {
	up := newUpgrader([]string{"https://app.codeduel.io", "http://localhost:3000"})

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"allowed origin", "https://app.codeduel.io", true},
		{"allowed localhost", "http://localhost:3000", true},
		{"unlisted origin", "https://evil.example.com", false},
		{"scheme mismatch", "http://app.codeduel.io", false},
		{"no origin header", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/ws", nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := up.CheckOrigin(req); got != tt.want {
				t.Errorf("CheckOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestNewHubConfiguresUpgrader(t *testing.T) {
	hub := NewHub(nil, []string{"http://localhost:3000"})

	req, err := http.NewRequest(http.MethodGet, "/ws", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://elsewhere.example.com")
	if hub.upgrader.CheckOrigin(req) {
		t.Error("expected unlisted origin to be rejected")
	}
}
