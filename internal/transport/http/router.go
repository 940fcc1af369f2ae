package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/rarepair-api/internal/application/document"
	"github.com/rarepair-api/internal/application/hospital"
	"github.com/rarepair-api/internal/application/match"
	"github.com/rarepair-api/internal/application/notification"
	"github.com/rarepair-api/internal/application/user"
	"github.com/rarepair-api/internal/application/verification"
	"github.com/rarepair-api/internal/config"
	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/transport/http/handler"
	appmiddleware "github.com/rarepair-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verificationSvc := verification.NewService(deps.CodeStore, deps.Mailer)
	userSvc := user.NewService(deps.UserRepo, verificationSvc, deps.JWTProvider)
	matchSvc := match.NewService(deps.MatchRepo, deps.UserRepo, deps.NotificationRepo, deps.Scorer, deps.Mailer, deps.SMSSender)
	matchQuerySvc := match.NewQueryService(deps.MatchRepo)
	hospitalSvc := hospital.NewService(deps.HospitalRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)
	documentSvc := document.NewService(deps.DocumentRepo, deps.S3Store)

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOTPHandler(verificationSvc)
	authH := handler.NewAuthHandler(userSvc)
	userH := handler.NewUserHandler(userSvc)
	matchH := handler.NewMatchHandler(matchSvc, matchQuerySvc)
	hospitalH := handler.NewHospitalHandler(hospitalSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	documentH := handler.NewDocumentHandler(documentSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/otp/send", otpH.Issue)
		r.With(sensitiveRL.Limit).Post("/otp/verify", otpH.Verify)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			// Any authenticated user
			r.Get("/users/me", userH.Current)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Get("/matches/{id}", matchH.Get)
			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)
			r.Post("/documents", documentH.Upload)
			r.Get("/documents/{id}", documentH.Download)
			r.Delete("/documents/{id}", documentH.Delete)
			r.Get("/hospitals", hospitalH.List)
			r.Get("/hospitals/{id}", hospitalH.Get)

			// Hospital and admin: matching workflow
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleHospital, domain.RoleAdmin))

				r.Get("/donors", userH.ListDonors)
				r.Get("/recipients", userH.ListRecipients)
				r.Get("/matches", matchH.List)
				r.Post("/matches", matchH.Create)
				r.Post("/matches/{id}/score", matchH.Score)
				r.Put("/matches/{id}/status", matchH.SetStatus)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Delete("/users/{id}", userH.Delete)
				r.Delete("/matches/{id}", matchH.Delete)

				r.Post("/hospitals", hospitalH.Create)
				r.Put("/hospitals/{id}", hospitalH.Update)
				r.Delete("/hospitals/{id}", hospitalH.Delete)
			})
		})
	})

	return r
}
