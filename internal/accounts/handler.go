package accounts

import (
	"net/http"

	"papertrader/internal/httputil"
	"papertrader/internal/model"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Numbers handles GET /trader/v1/accounts/accountNumbers.
func (h *Handler) Numbers(w http.ResponseWriter, r *http.Request) {
	numbers, err := h.svc.Numbers(r.Context())
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if numbers == nil {
		numbers = []AccountNumberHash{}
	}
	httputil.WriteJSON(w, http.StatusOK, numbers)
}

// List handles GET /trader/v1/accounts. The fields query parameter is
// accepted for API compatibility but every response carries the full document.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.List(r.Context())
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	httputil.WriteJSON(w, http.StatusOK, accounts)
}

// Get handles GET /trader/v1/accounts/{accountNumber}, where the path
// parameter is the account hash.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "accountNumber")
	acct, err := h.svc.Get(r.Context(), hash)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}
