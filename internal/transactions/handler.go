package transactions

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"papertrader/internal/httputil"
	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /trader/v1/accounts/{accountNumber}/transactions.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseQueryTime(q.Get("startDate"))
	if err != nil {
		httputil.WriteDomainError(w, types.InvalidInput("startDate must be RFC 3339"))
		return
	}
	end, err := parseQueryTime(q.Get("endDate"))
	if err != nil {
		httputil.WriteDomainError(w, types.InvalidInput("endDate must be RFC 3339"))
		return
	}

	var txTypes []types.TransactionType
	if raw := q.Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			txTypes = append(txTypes, types.TransactionType(strings.TrimSpace(part)))
		}
	}

	out, err := h.svc.List(r.Context(), chi.URLParam(r, "accountNumber"), start, end, txTypes, q.Get("symbol"))
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []model.Transaction{}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /trader/v1/accounts/{accountNumber}/transactions/{transactionId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	activityID, err := strconv.ParseInt(chi.URLParam(r, "transactionId"), 10, 64)
	if err != nil {
		httputil.WriteDomainError(w, types.InvalidInput("transactionId must be numeric"))
		return
	}
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "accountNumber"), activityID)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

func parseQueryTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
