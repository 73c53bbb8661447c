package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codr1/CabinDesk/internal/config"
)

func TestServerRoutes(t *testing.T) {
	cfg, err := config.Parse([]byte("app:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.App.SecretKey = "front-desk-token"
	handler := newServer(cfg, nil).Handler

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "health is public", path: "/health", status: http.StatusOK},
		{name: "api requires token", path: "/api/v1/cabins", status: http.StatusUnauthorized},
		{name: "unknown route", path: "/nowhere", status: http.StatusNotFound},
		{name: "unknown api route with token", path: "/api/v1/guests", token: "front-desk-token", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("GET %s status = %d, want %d", tt.path, rec.Code, tt.status)
			}
		})
	}
}
