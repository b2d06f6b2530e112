package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/model"
	"github.com/fintrack/backend/internal/service"
)

func TestRegisterHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var svc *service.AuthService
	r.POST("/api/v1/auth/register", NewAuthHandler(svc).Register)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"bad email", `{"name":"Alice","email":"not-an-email","password":"password1"}`},
		{"short password", `{"name":"Alice","email":"alice@example.com","password":"short"}`},
		{"missing name", `{"email":"alice@example.com","password":"password1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}

			var resp model.Envelope
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Success {
				t.Fatal("expected success=false")
			}
		})
	}
}

func TestVerifyEmailHandlerRejectsShortCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var svc *service.AuthService
	r.POST("/api/v1/auth/verify-email", NewAuthHandler(svc).VerifyEmail)

	w := httptest.NewRecorder()
	body := `{"email":"alice@example.com","code":"1234"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/verify-email", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}
