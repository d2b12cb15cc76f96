package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func postToken(t *testing.T, h *Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Token(rec, req)
	return rec
}

func TestTokenEndpointMintsToken(t *testing.T) {
	svc := NewService("papertrader", []byte("test-secret"), 30*time.Minute)
	h := NewHandler(svc)

	rec := postToken(t, h, url.Values{
		"grant_type": {"client_credentials"},
		"client_id":  {"trader-app"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}

	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q, want Bearer", resp.TokenType)
	}
	if resp.ExpiresIn != 1800 {
		t.Errorf("expires_in = %d, want 1800", resp.ExpiresIn)
	}
	if _, err := svc.ParseToken(resp.AccessToken); err != nil {
		t.Errorf("minted token does not verify: %v", err)
	}
}

func TestTokenEndpointBasicAuth(t *testing.T) {
	svc := NewService("papertrader", []byte("test-secret"), time.Minute)
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/oauth/token", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("trader-app", "")
	rec := httptest.NewRecorder()
	h.Token(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
}

func TestTokenEndpointRejectsBadCredentials(t *testing.T) {
	svc := NewService("papertrader", []byte("test-secret"), time.Minute)
	h := NewHandler(svc)

	rec := postToken(t, h, url.Values{"client_id": {""}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestTokenEndpointRejectsUnknownGrant(t *testing.T) {
	svc := NewService("papertrader", []byte("test-secret"), time.Minute)
	h := NewHandler(svc)

	rec := postToken(t, h, url.Values{
		"grant_type": {"password"},
		"client_id":  {"trader-app"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
