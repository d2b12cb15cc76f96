package marketdata

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type quoteFrame struct {
	Type      string  `json:"type"`
	Quotes    []Quote `json:"quotes"`
	Timestamp int64   `json:"ts"`
}

// QuoteWS streams simulated quotes over a websocket. Clients pass
// ?symbols=AAPL,MSFT to subscribe; with no parameter they get every known
// symbol.
type QuoteWS struct {
	source   *Source
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewQuoteWS(source *Source, origin string, interval time.Duration) *QuoteWS {
	return &QuoteWS{
		source:   source,
		interval: interval,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return allowOrigin(r, origin) }},
	}
}

func (h *QuoteWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	symbols := parseSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		symbols = parseSymbols(r.URL.Query().Get("symbol"))
	}
	if len(symbols) == 0 {
		symbols = h.source.Symbols()
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	for {
		select {
		case <-ticker.C:
			quotes := make([]Quote, 0, len(symbols))
			for _, symbol := range symbols {
				q, err := h.source.Quote(symbol)
				if err != nil {
					continue
				}
				quotes = append(quotes, q)
			}
			msg := quoteFrame{Type: "quotes", Quotes: quotes, Timestamp: time.Now().UTC().Unix()}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func parseSymbols(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		symbol := strings.ToUpper(strings.TrimSpace(p))
		if symbol != "" {
			out = append(out, symbol)
		}
	}
	return out
}

func allowOrigin(r *http.Request, origin string) bool {
	if origin == "" || origin == "*" {
		return true
	}
	return strings.EqualFold(r.Header.Get("Origin"), origin)
}
