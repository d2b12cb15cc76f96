package httpserver

import (
	"log/slog"
	"net/http"

	"papertrader/internal/accounts"
	"papertrader/internal/admin"
	"papertrader/internal/auth"
	"papertrader/internal/health"
	"papertrader/internal/marketdata"
	"papertrader/internal/orders"
	"papertrader/internal/prefs"
	"papertrader/internal/transactions"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler         *auth.Handler
	AuthService         *auth.Service
	AuthRequired        bool
	AccountsHandler     *accounts.Handler
	OrderHandler        *orders.Handler
	TransactionsHandler *transactions.Handler
	PrefsHandler        *prefs.Handler
	MarketHandler       *marketdata.Handler
	StreamHandler       http.Handler
	HealthHandler       *health.Handler
	AdminHandler        *admin.Handler
	InternalToken       string
	CORSOrigin          string
	Logger              *slog.Logger
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(d.Logger))
	r.Use(SecurityHeaders)
	r.Use(CORS(d.CORSOrigin))

	r.Get("/health", d.HealthHandler.Get)
	r.Get("/health/live", d.HealthHandler.Live)
	r.Get("/health/ready", d.HealthHandler.Ready)
	r.Get("/health/full", d.HealthHandler.Full)
	r.Get("/health/metrics", d.HealthHandler.Metrics)

	// One bucket per client IP, shared by the token and admin groups.
	limited := RateLimit(10, 30)

	r.With(limited).Post("/v1/oauth/token", d.AuthHandler.Token)

	r.Route("/trader/v1", func(r chi.Router) {
		r.Use(WithAuth(d.AuthService, d.AuthRequired))

		r.Get("/accounts/accountNumbers", d.AccountsHandler.Numbers)
		r.Get("/accounts", d.AccountsHandler.List)
		r.Get("/accounts/{accountNumber}", d.AccountsHandler.Get)

		r.Get("/accounts/{accountNumber}/orders", d.OrderHandler.ListByAccount)
		r.Post("/accounts/{accountNumber}/orders", d.OrderHandler.Place)
		r.Get("/accounts/{accountNumber}/orders/{orderId}", d.OrderHandler.Get)
		r.Delete("/accounts/{accountNumber}/orders/{orderId}", d.OrderHandler.Cancel)
		r.Put("/accounts/{accountNumber}/orders/{orderId}", d.OrderHandler.Replace)
		r.Post("/accounts/{accountNumber}/previewOrder", d.OrderHandler.PreviewOrder)
		r.Get("/orders", d.OrderHandler.ListAll)

		r.Get("/accounts/{accountNumber}/transactions", d.TransactionsHandler.List)
		r.Get("/accounts/{accountNumber}/transactions/{transactionId}", d.TransactionsHandler.Get)

		r.Get("/userPreference", d.PrefsHandler.Get)
	})

	r.Route("/marketdata/v1", func(r chi.Router) {
		r.Get("/quotes", d.MarketHandler.Quotes)
		r.Method(http.MethodGet, "/stream", d.StreamHandler)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(limited)
		r.Use(InternalAuth(d.InternalToken))

		r.Post("/accounts", d.AdminHandler.CreateAccount)
		r.Delete("/accounts/{hashValue}", d.AdminHandler.DeleteAccount)
		r.Post("/accounts/{hashValue}/reset", d.AdminHandler.ResetAccount)
	})

	return r
}
