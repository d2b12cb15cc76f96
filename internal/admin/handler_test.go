package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// The handler validates before any store work, so these paths run without a
// database behind the services.

func TestCreateAccountRejectsMalformedBody(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/accounts", strings.NewReader(`{"accountType":`))
	rec := httptest.NewRecorder()
	h.CreateAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: status = %d, want 400", rec.Code)
	}
}

func TestCreateAccountRejectsUnknownField(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/accounts", strings.NewReader(`{"acountType":"CASH"}`))
	rec := httptest.NewRecorder()
	h.CreateAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: status = %d, want 400", rec.Code)
	}
}

func TestCreateAccountRejectsBadType(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/accounts", strings.NewReader(`{"accountType":"CRYPTO"}`))
	rec := httptest.NewRecorder()
	h.CreateAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad account type: status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CASH or MARGIN") {
		t.Errorf("error body missing type hint: %s", rec.Body.String())
	}
}

func TestDeleteAccountRequiresHash(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())

	// No chi route context, so the hashValue param resolves empty.
	req := httptest.NewRequest(http.MethodDelete, "/admin/accounts/", nil)
	rec := httptest.NewRecorder()
	h.DeleteAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank hash: status = %d, want 400", rec.Code)
	}
}

func TestResetAccountRequiresHash(t *testing.T) {
	h := NewHandler(nil, nil, discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/accounts//reset", nil)
	rec := httptest.NewRecorder()
	h.ResetAccount(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank hash: status = %d, want 400", rec.Code)
	}
}
