package orders

import (
	"net/http"
	"strconv"
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

type placedResponse struct {
	OrderID int64 `json:"orderId"`
}

// Place handles POST /trader/v1/accounts/{accountNumber}/orders.
func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteDomainError(w, types.InvalidInput(err.Error()))
		return
	}
	hash := chi.URLParam(r, "accountNumber")
	id, err := h.svc.Place(r.Context(), hash, req)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Location", orderLocation(hash, id))
	httputil.WriteJSON(w, http.StatusCreated, placedResponse{OrderID: id})
}

func orderLocation(hash string, orderID int64) string {
	return "/trader/v1/accounts/" + hash + "/orders/" + strconv.FormatInt(orderID, 10)
}

// Get handles GET /trader/v1/accounts/{accountNumber}/orders/{orderId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "accountNumber"), orderID)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

// Cancel handles DELETE /trader/v1/accounts/{accountNumber}/orders/{orderId}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if err := h.svc.Cancel(r.Context(), chi.URLParam(r, "accountNumber"), orderID); err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, struct{}{})
}

// Replace handles PUT /trader/v1/accounts/{accountNumber}/orders/{orderId}.
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	var req model.OrderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteDomainError(w, types.InvalidInput(err.Error()))
		return
	}
	hash := chi.URLParam(r, "accountNumber")
	id, err := h.svc.Replace(r.Context(), hash, orderID, req)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	w.Header().Set("Location", orderLocation(hash, id))
	httputil.WriteJSON(w, http.StatusCreated, placedResponse{OrderID: id})
}

// ListByAccount handles GET /trader/v1/accounts/{accountNumber}/orders.
func (h *Handler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	out, err := h.svc.ListByAccount(r.Context(), chi.URLParam(r, "accountNumber"), f)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []model.Order{}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// ListAll handles GET /trader/v1/orders across every account.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	out, err := h.svc.ListAll(r.Context(), f)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []model.Order{}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// PreviewOrder handles POST /trader/v1/accounts/{accountNumber}/previewOrder.
func (h *Handler) PreviewOrder(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteDomainError(w, types.InvalidInput(err.Error()))
		return
	}
	preview, err := h.svc.Preview(r.Context(), chi.URLParam(r, "accountNumber"), req)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, preview)
}

func parseOrderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
	if err != nil {
		return 0, types.InvalidInput("orderId must be numeric")
	}
	return id, nil
}

func parseFilter(r *http.Request) (Filter, error) {
	var f Filter
	q := r.URL.Query()

	from, err := parseQueryTime(q.Get("fromEnteredTime"))
	if err != nil {
		return f, types.InvalidInput("fromEnteredTime must be RFC 3339")
	}
	to, err := parseQueryTime(q.Get("toEnteredTime"))
	if err != nil {
		return f, types.InvalidInput("toEnteredTime must be RFC 3339")
	}
	f.From, f.To = from, to
	f.Status = types.OrderStatus(q.Get("status"))

	if raw := q.Get("maxResults"); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil || max < 1 {
			return f, types.InvalidInput("maxResults must be a positive integer")
		}
		f.MaxResults = max
	}
	return f, nil
}

func parseQueryTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
