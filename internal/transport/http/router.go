package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/dashcrm-api/internal/application/auth"
	"github.com/dashcrm-api/internal/application/crm"
	"github.com/dashcrm-api/internal/application/metrics"
	"github.com/dashcrm-api/internal/application/otp"
	"github.com/dashcrm-api/internal/config"
	jwtinfra "github.com/dashcrm-api/internal/infrastructure/jwt"
	"github.com/dashcrm-api/internal/infrastructure/rediscache"
	"github.com/dashcrm-api/internal/transport/http/handler"
	appmiddleware "github.com/dashcrm-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Accounts    AccountDirectory
	Helena      CrmClient
	JWTProvider *jwtinfra.Provider
	Sender      CodeSender
	Dispatcher  TaskDispatcher
	Cache       *rediscache.Cache
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// ~10 attempts per 15 minutes per IP on the login endpoints; 60/min on the
	// authenticated CRM and metrics reads.
	loginRL := appmiddleware.NewRateLimiter(rate.Every(90*time.Second), 10)
	apiRL := appmiddleware.NewRateLimiter(rate.Limit(1), 60)

	otpSvc := otp.NewService(deps.Accounts, deps.Sender, deps.Dispatcher)
	authSvc := auth.NewService(deps.Accounts, deps.Helena, deps.JWTProvider, otpSvc)
	crmSvc := crm.NewService(deps.Accounts, deps.Helena, deps.Cache)
	metricsSvc := metrics.NewService(crmSvc)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	crmH := handler.NewCrmHandler(crmSvc)
	metricsH := handler.NewMetricsHandler(metricsSvc)

	r.Get("/health", healthH.Check)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(loginRL.Limit)
			r.Post("/auth/login", authH.Login)
			r.Post("/auth/verify-code", authH.VerifyCode)
		})

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))
			r.Use(apiRL.Limit)

			r.Get("/crm/panels", crmH.Panels)
			r.Get("/crm/panels/{id}", crmH.PanelByID)
			r.Get("/crm/panels/{panelId}/agents", crmH.AgentsByPanel)
			r.Get("/crm/cards", crmH.Cards)
			r.Get("/crm/cards/{id}", crmH.CardByID)

			r.Get("/metrics/funnel", metricsH.Funnel)
			r.Get("/metrics/revenue", metricsH.Revenue)
			r.Get("/metrics/conversion", metricsH.Conversion)
			r.Get("/metrics/loss", metricsH.Loss)
			r.Get("/metrics/dashboard", metricsH.Dashboard)
		})
	})

	return r
}
