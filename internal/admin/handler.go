package admin

import (
	"context"
	"log/slog"
	"net/http"

	"papertrader/internal/accounts"
	"papertrader/internal/httputil"
	"papertrader/internal/prefs"
	"papertrader/internal/types"

	"github.com/go-chi/chi/v5"
)

// Handler owns the account-lifecycle endpoints. They exist for development
// and test setups and sit behind the internal token when one is configured.
type Handler struct {
	accounts *accounts.Service
	prefs    *prefs.Service
	logger   *slog.Logger
}

func NewHandler(accountSvc *accounts.Service, prefSvc *prefs.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{accounts: accountSvc, prefs: prefSvc, logger: logger}
}

type createRequest struct {
	AccountType string `json:"accountType"`
}

// CreateAccount handles POST /admin/accounts. The body is optional; an
// absent or empty accountType creates a CASH account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := httputil.ReadJSON(r, &req); err != nil {
			httputil.WriteDomainError(w, types.InvalidInput(err.Error()))
			return
		}
	}
	acct, err := h.accounts.Create(r.Context(), req.AccountType)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	h.refreshPreference(r.Context())
	httputil.WriteJSON(w, http.StatusCreated, acct)
}

// DeleteAccount handles DELETE /admin/accounts/{hashValue}. Orders and
// transactions of the account go with it.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), chi.URLParam(r, "hashValue")); err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	h.refreshPreference(r.Context())
	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

// ResetAccount handles POST /admin/accounts/{hashValue}/reset: reseed the
// balances, drop positions, and cascade away the account's orders and
// transactions. The account number and hash survive.
func (h *Handler) ResetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.Reset(r.Context(), chi.URLParam(r, "hashValue"))
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}

// refreshPreference rebuilds the userPreference account list after the set
// of accounts changes. Failures are logged, not surfaced: the lifecycle
// operation itself already succeeded.
func (h *Handler) refreshPreference(ctx context.Context) {
	list, err := h.accounts.List(ctx)
	if err != nil {
		h.logger.Warn("preference refresh: list accounts", slog.Any("err", err))
		return
	}
	if err := h.prefs.RefreshAccounts(ctx, list); err != nil {
		h.logger.Warn("preference refresh failed", slog.Any("err", err))
	}
}
