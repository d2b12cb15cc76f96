package marketdata

import (
	"net/http"

	"papertrader/internal/httputil"
	"papertrader/internal/types"
)

type Handler struct {
	source *Source
}

func NewHandler(source *Source) *Handler {
	return &Handler{source: source}
}

// Quotes handles GET /marketdata/v1/quotes?symbols=AAPL,MSFT. The response
// is keyed by symbol; unknown symbols are omitted rather than failing the
// whole request.
func (h *Handler) Quotes(w http.ResponseWriter, r *http.Request) {
	symbols := parseSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		httputil.WriteDomainError(w, types.InvalidInput("symbols is required"))
		return
	}

	out := make(map[string]Quote, len(symbols))
	for _, symbol := range symbols {
		q, err := h.source.Quote(symbol)
		if err != nil {
			continue
		}
		out[symbol] = q
	}
	if len(out) == 0 {
		httputil.WriteDomainError(w, types.NotFound("Symbol", symbols[0]))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
