// Package handler is the local HTTP surface the browser dashboard talks
// to. Handlers translate UI events into store operations and typed domain
// errors into HTTP statuses; they never hold state of their own.
package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/config"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/gateway"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/session"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps carries everything the router wires together.
type Deps struct {
	Session  *session.Store
	Gateway  *gateway.Client
	Wallet   *store.Wallet
	Admin    *store.Admin
	Notifier *store.Notifier
	Poller   *store.Poller
	Metrics  *observability.Metrics
	Logger   *zap.Logger
	Config   *config.Config
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	pc := &pollControl{poller: d.Poller}

	r.Route("/v1", func(r chi.Router) {
		// Session
		r.Post("/auth/signup", signupHandler(d))
		r.Post("/auth/login", loginHandler(d))
		r.Post("/auth/logout", logoutHandler(d))
		r.Post("/auth/admin/login", adminLoginHandler(d))
		r.Post("/auth/admin/logout", adminLogoutHandler(d))
		r.Get("/session", sessionHandler(d))

		// Member identity & joining payment
		r.Get("/profile", profileHandler(d))
		r.Post("/payment/submit", submitPaymentHandler(d))

		// Wallet & earnings
		r.Get("/wallet", walletStateHandler(d))
		r.Post("/wallet/refresh", walletRefreshHandler(d))
		r.Post("/transactions/refresh", transactionsRefreshHandler(d))
		r.Get("/wallet/breakdown", walletBreakdownHandler(d))

		// Withdrawals
		r.Post("/withdrawals", createWithdrawalHandler(d))
		r.Get("/withdrawals", withdrawalsHandler(d))
		r.Get("/withdrawals/limits", withdrawalLimitsHandler(d))

		// Matrix & referrals
		r.Get("/matrix", matrixHandler(d))
		r.Get("/matrix/tree", matrixTreeHandler(d))
		r.Get("/referrals", referralsHandler(d))
		r.Get("/referral-code", referralCodeHandler(d))
		r.Get("/downline/count", downlineCountHandler(d))
		r.Post("/activate", activateHandler(d))

		// Weekly bonanza & leadership
		r.Get("/weekly", weeklyHandler(d))
		r.Get("/bonanza", bonanzaHandler(d))
		r.Get("/bonanza/logs", bonanzaLogsHandler(d))
		r.Get("/leadership", leadershipHandler(d))
		r.Get("/leadership/logs", leadershipLogsHandler(d))

		// Notification slot
		r.Get("/notification", notificationHandler(d))
		r.Delete("/notification", notificationHideHandler(d))

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Get("/state", adminStateHandler(d))
			r.Get("/metrics", adminMetricsHandler(d))
			r.Get("/users", adminUsersHandler(d))
			r.Get("/withdrawals", adminWithdrawalsHandler(d))
			r.Put("/withdrawals/{withdrawalID}", adminApproveWithdrawalHandler(d))
			r.Post("/users/{userID}/wallet", adminAdjustWalletHandler(d))
			r.Put("/users/{userID}/status", adminUserStatusHandler(d))
			r.Get("/ledger", adminLedgerHandler(d))
			r.Get("/activity", adminActivityHandler(d))
			r.Get("/pending-payments", adminPendingPaymentsHandler(d))
			r.Put("/pending-payments/{userID}/approve", adminApprovePaymentHandler(d))
			r.Put("/pending-payments/{userID}/reject", adminRejectPaymentHandler(d))
			r.Post("/poll/start", pollStartHandler(pc))
			r.Post("/poll/stop", pollStopHandler(pc))
		})
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// pollControl holds the running admin poll, at most one at a time. The
// dashboard view starts it on mount and stops it on unmount.
type pollControl struct {
	mu     sync.Mutex
	poller *store.Poller
	stop   func()
}

func pollStartHandler(pc *pollControl) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		if pc.stop == nil {
			pc.stop = pc.poller.Start(context.Background())
		}
		writeJSON(w, http.StatusOK, map[string]bool{"polling": true})
	}
}

func pollStopHandler(pc *pollControl) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		if pc.stop != nil {
			pc.stop()
			pc.stop = nil
		}
		writeJSON(w, http.StatusOK, map[string]bool{"polling": false})
	}
}
