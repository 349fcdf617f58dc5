package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linescout/linescout-backend/api/controllers"
	"github.com/linescout/linescout-backend/api/middleware"
	"github.com/linescout/linescout-backend/internal/agents"
	"github.com/linescout/linescout-backend/internal/auth"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/ledger"
	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/internal/payments"
	"github.com/linescout/linescout-backend/internal/quotes"
	"github.com/linescout/linescout-backend/internal/reorders"
	"github.com/linescout/linescout-backend/pkg/auth/session"
	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/redis"
)

// Pinger matches the readiness probes exposed by the db and redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router needs. Grouping them beats a
// twelve-argument constructor.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            Pinger
	Redis         *redis.Client
	Sessions      session.AccessSessionChecker
	Auth          auth.Service
	Handoffs      handoffs.Service
	Quotes        quotes.Service
	Ledger        ledger.Service
	Payments      payments.Service
	Reorders      reorders.Service
	Notifications notifications.Service
	Agents        agents.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.SystemRoleCustomer, logg))
			r.Post("/v1/payments/verify", controllers.PaymentVerify(deps.Payments, logg))
			r.Get("/v1/reorders", controllers.MyReorders(deps.Reorders, logg))
		})

		r.Route("/v1/agent", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.SystemRoleAgent, logg))
			r.Route("/handoffs", func(r chi.Router) {
				r.Get("/", controllers.AgentHandoffs(deps.Handoffs, logg))
				r.Get("/queue", controllers.HandoffQueue(deps.Handoffs, logg))
				r.Route("/{handoffID}", func(r chi.Router) {
					r.Get("/", controllers.HandoffDetail(deps.Handoffs, logg))
					r.Get("/actions", controllers.HandoffActions(deps.Handoffs, logg))
					r.Post("/claim", controllers.HandoffClaim(deps.Handoffs, logg))
					r.Post("/manufacturer-found", controllers.HandoffManufacturerFound(deps.Handoffs, logg))
					r.Post("/mark-paid", controllers.HandoffMarkPaid(deps.Handoffs, logg))
					r.Post("/ship", controllers.HandoffShip(deps.Handoffs, logg))
					r.Post("/deliver", controllers.HandoffDeliver(deps.Handoffs, logg))
					r.Post("/cancel", controllers.HandoffCancel(deps.Handoffs, logg))
					r.Get("/quotes", controllers.HandoffQuotes(deps.Quotes, logg))
					r.Post("/quotes", controllers.HandoffQuoteCreate(deps.Quotes, logg))
					r.Get("/ledger", controllers.HandoffLedger(deps.Ledger, logg))
					r.Get("/ledger/verify", controllers.HandoffLedgerVerify(deps.Ledger, logg))
					r.Post("/payments", controllers.HandoffRecordPayment(deps.Ledger, logg))
				})
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(enums.SystemRoleAdmin, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/v1/agents", func(r chi.Router) {
			r.Get("/", controllers.AdminListAgents(deps.Agents, logg))
			r.Route("/{agentID}", func(r chi.Router) {
				r.Get("/", controllers.AdminAgentDetail(deps.Agents, logg))
				r.Post("/approve", controllers.AdminApproveAgent(deps.Agents, logg))
				r.Put("/approval-status", controllers.AdminSetAgentApprovalStatus(deps.Agents, logg))
				r.Put("/active", controllers.AdminSetAgentActive(deps.Agents, logg))
				r.Patch("/profile", controllers.AdminUpdateAgentProfile(deps.Agents, logg))
			})
		})

		r.Route("/v1/reorders", func(r chi.Router) {
			r.Get("/", controllers.AdminListReorders(deps.Reorders, logg))
			r.Route("/{reorderID}", func(r chi.Router) {
				r.Get("/", controllers.AdminReorderDetail(deps.Reorders, logg))
				r.Post("/assign", controllers.AdminAssignReorder(deps.Reorders, logg))
			})
		})

		r.Route("/v1/handoffs", func(r chi.Router) {
			r.Route("/{handoffID}", func(r chi.Router) {
				r.Get("/", controllers.HandoffDetail(deps.Handoffs, logg))
				r.Get("/ledger", controllers.HandoffLedger(deps.Ledger, logg))
				r.Get("/ledger/verify", controllers.HandoffLedgerVerify(deps.Ledger, logg))
				r.Post("/mark-paid", controllers.HandoffMarkPaid(deps.Handoffs, logg))
				r.Post("/cancel", controllers.HandoffCancel(deps.Handoffs, logg))
			})
		})
	})

	return r
}
