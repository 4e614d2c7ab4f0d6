package http

import (
	"net/http"

	"github.com/admin-console-api/internal/application/account"
	"github.com/admin-console-api/internal/application/auth"
	"github.com/admin-console-api/internal/application/coupon"
	"github.com/admin-console-api/internal/application/dispatch"
	"github.com/admin-console-api/internal/config"
	"github.com/admin-console-api/internal/domain"
	"github.com/admin-console-api/internal/transport/http/handler"
	appmiddleware "github.com/admin-console-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
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

	// 5 requests/second, burst of 10 — applied to the public login endpoint.
	loginRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	dispatchSvc := dispatch.NewService(deps.AccountRepo, deps.Mailer, cfg.DispatchConcurrency)
	accountSvc := account.NewService(deps.AccountRepo, deps.TransactionRepo, deps.TaskRepo, dispatchSvc)
	couponSvc := coupon.NewService(deps.CouponRepo, deps.AccountRepo, deps.TransactionRepo)
	authSvc := auth.NewService(deps.OperatorRepo, deps.JWTProvider)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(authSvc)
	accountH := handler.NewAccountHandler(accountSvc)
	couponH := handler.NewCouponHandler(couponSvc)
	emailH := handler.NewEmailHandler(dispatchSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(loginRL.Limit).Post("/sessions/login", sessionH.Login)

		// Admin console routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/accounts", accountH.List)
			r.Get("/accounts/stats", accountH.Stats)
			r.Get("/accounts/{id}", accountH.Get)
			r.Put("/accounts/{id}", accountH.Update)
			r.Delete("/accounts/{id}", accountH.Delete)
			r.Post("/accounts/{id}/status", accountH.SetStatus)

			r.Get("/coupons", couponH.List)
			r.Post("/coupons", couponH.Create)
			r.Get("/coupons/stats", couponH.Stats)
			r.Get("/coupons/users", couponH.Users)
			r.Put("/coupons/{code}", couponH.Update)
			r.Delete("/coupons/{code}", couponH.Delete)

			r.Post("/emails/send", emailH.Send)
			r.Post("/emails/send-bulk", emailH.SendBulk)
		})
	})

	return r
}
