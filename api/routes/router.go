package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealeros/dealeros-backend/api/controllers"
	"github.com/dealeros/dealeros-backend/api/middleware"
	"github.com/dealeros/dealeros-backend/internal/admins"
	"github.com/dealeros/dealeros-backend/internal/auth"
	"github.com/dealeros/dealeros-backend/internal/exports"
	"github.com/dealeros/dealeros-backend/internal/leads"
	"github.com/dealeros/dealeros-backend/internal/permissions"
	"github.com/dealeros/dealeros-backend/internal/team"
	"github.com/dealeros/dealeros-backend/internal/vehicles"
	"github.com/dealeros/dealeros-backend/pkg/auth/session"
	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/logger"
	"github.com/dealeros/dealeros-backend/pkg/metrics"
)

// RateLimiter is the fixed-window counter behind the auth throttles.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// UserFinder loads the caller for /me.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Dependencies is everything the HTTP surface needs. Nil services surface as 500s on
// their own routes; nil pingers are skipped by readiness.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimiter RateLimiter
	Idempotency middleware.IdempotencyStore

	Sessions session.AccessSessionChecker
	Resolver middleware.TenantResolver
	Users    UserFinder

	Auth     auth.Service
	Register auth.RegisterService
	Leads    leads.Service
	Team     team.Service
	Exports  exports.Service
	Vehicles vehicles.Service
	Admins   admins.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewLoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	authenticated := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	tenantScoped := middleware.TenantContext(deps.Resolver, middleware.TenantOptions{
		JWT:           cfg.JWT,
		Impersonation: cfg.Impersonation,
	}, logg)
	can := func(p permissions.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(p, logg)
	}
	idempotent := middleware.Idempotency(deps.Idempotency, cfg.Redis.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, deps.RateLimiter, logg), idempotent).Post("/register", controllers.AuthRegister(deps.Register, deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
			r.With(authenticated).Post("/switch-dealer", controllers.AuthSwitchDealer(deps.Auth, logg))
		})

		// Invitees have no tenant until they accept.
		r.Get("/team/invitations/{token}", controllers.TeamPreviewInvitation(deps.Team, logg))
		r.With(authenticated).Post("/team/invitations/accept", controllers.TeamAcceptInvitation(deps.Team, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(tenantScoped)

			r.Get("/me", controllers.Me(deps.Users, logg))

			r.Route("/leads", func(r chi.Router) {
				r.Get("/", controllers.LeadsList(deps.Leads, logg))
				r.Get("/{leadId}", controllers.LeadsGet(deps.Leads, logg))
				r.Group(func(r chi.Router) {
					r.Use(can(permissions.ManageLeads))
					r.With(idempotent).Post("/", controllers.LeadsCreate(deps.Leads, logg))
					r.Patch("/{leadId}", controllers.LeadsUpdate(deps.Leads, logg))
					r.Delete("/{leadId}", controllers.LeadsDelete(deps.Leads, logg))
					r.With(idempotent).Post("/{leadId}/activities", controllers.LeadsAddActivity(deps.Leads, logg))
				})
			})

			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", controllers.VehiclesList(deps.Vehicles, logg))
				r.With(can(permissions.ManageVehicles)).Get("/export", controllers.VehiclesExport(deps.Exports, logg))
				r.Get("/{vehicleId}", controllers.VehiclesGet(deps.Vehicles, logg))
			})

			r.Get("/team", controllers.TeamRoster(deps.Team, logg))
			r.Group(func(r chi.Router) {
				r.Use(can(permissions.ManageTeam))
				r.With(idempotent).Post("/team/invitations", controllers.TeamInvite(deps.Team, logg))
				r.Delete("/team/invitations/{invitationId}", controllers.TeamCancelInvitation(deps.Team, logg))
				r.Patch("/team/members/{memberId}", controllers.TeamChangeRole(deps.Team, logg))
				r.Delete("/team/members/{memberId}", controllers.TeamRemoveMember(deps.Team, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticated)
		// Stopping only clears the caller's own marker, so former admins can still do it.
		r.Delete("/impersonate", controllers.AdminStopImpersonation(deps.Admins, cfg.Impersonation, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePlatformAdmin(deps.Admins, logg))
			r.Get("/dealers", controllers.AdminDealersList(deps.Admins, logg))
			r.Get("/dealers/{dealerId}/impersonations", controllers.AdminImpersonationHistory(deps.Admins, logg))
			r.Post("/impersonate", controllers.AdminStartImpersonation(deps.Admins, cfg.Impersonation, logg))
		})
	})

	return r
}
