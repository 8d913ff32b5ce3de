package http

import (
	"net/http"

	"github.com/flowgatex/identity-api/internal/application/bridge"
	"github.com/flowgatex/identity-api/internal/application/otp"
	"github.com/flowgatex/identity-api/internal/application/recovery"
	"github.com/flowgatex/identity-api/internal/application/registration"
	"github.com/flowgatex/identity-api/internal/application/session"
	"github.com/flowgatex/identity-api/internal/application/user"
	"github.com/flowgatex/identity-api/internal/config"
	"github.com/flowgatex/identity-api/internal/domain"
	googleinfra "github.com/flowgatex/identity-api/internal/infrastructure/google"
	jwtinfra "github.com/flowgatex/identity-api/internal/infrastructure/jwt"
	s3infra "github.com/flowgatex/identity-api/internal/infrastructure/s3"
	"github.com/flowgatex/identity-api/internal/infrastructure/smtp"
	"github.com/flowgatex/identity-api/internal/infrastructure/sns"
	"github.com/flowgatex/identity-api/internal/transport/http/handler"
	appmiddleware "github.com/flowgatex/identity-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. Repositories are
// interfaces so the DynamoDB and in-memory backends plug in interchangeably.
type Deps struct {
	UserRepo         UserRepository
	SessionRepo      SessionRepository
	VerificationRepo VerificationRepository
	AuthCodeRepo     AuthCodeRepository
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
	GoogleVerifier   *googleinfra.Verifier
	AuthNotifier     session.AuthNotifier // mock mode only
	Bridge           *bridge.Bridge       // mock mode only
}

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

	// 5 requests/second, burst of 10 on sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	regDeps := registration.ServiceDeps{
		UserStore:     deps.UserRepo,
		AuthCodeStore: deps.AuthCodeRepo,
	}
	if deps.GoogleVerifier != nil {
		regDeps.Google = deps.GoogleVerifier
	}
	regSvc := registration.NewService(regDeps)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:  deps.VerificationRepo,
		Mailer: deps.Mailer,
		SMS:    deps.SMSSender,
		Config: otp.Config{
			TTL:            cfg.OTPTTL,
			ResendCooldown: cfg.OTPResendEvery,
			MaxAttempts:    cfg.OTPMaxAttempts,
		},
	})

	sessionSvc := session.NewService(session.ServiceDeps{
		SessionStore:    deps.SessionRepo,
		UserStore:       deps.UserRepo,
		JWTProvider:     deps.JWTProvider,
		Notifier:        deps.AuthNotifier,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})

	userDeps := user.ServiceDeps{
		UserStore:    deps.UserRepo,
		SessionStore: deps.SessionRepo,
	}
	if deps.S3Store != nil {
		userDeps.Avatars = deps.S3Store
	}
	userSvc := user.NewService(userDeps)

	recoverySvc := recovery.NewService(recovery.ServiceDeps{
		UserStore: deps.UserRepo,
		OTP:       otpSvc,
		Sessions:  sessionSvc,
	})

	healthH := handler.NewHealthHandler()
	regH := handler.NewRegistrationHandler(regSvc)
	otpH := handler.NewOTPHandler(otpSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	pwH := handler.NewPasswordRecoveryHandler(recoverySvc, userSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", regH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/register/google", regH.RegisterGoogle)
		r.With(sensitiveRL.Limit).Post("/auth/otp/send", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/auth/otp/verify", otpH.Verify)
		r.With(sensitiveRL.Limit).Post("/auth/validate-auth-code", regH.ValidateAuthCode)
		r.With(sensitiveRL.Limit).Post("/auth/password-recovery/{action}", pwH.Action)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)

		if deps.Bridge != nil {
			authStateH := handler.NewAuthStateHandler(deps.Bridge)
			r.Get("/auth/state", authStateH.Current)
		}

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			// Any authenticated user
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Post("/users/avatar", userH.UploadAvatar)
			r.Post("/auth/password-recovery/change-password", pwH.ChangePassword)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin))

				r.Get("/users", userH.List)
				r.Delete("/users/{id}", userH.Delete)

				r.Post("/auth-codes", regH.CreateAuthCode)
				r.Delete("/auth-codes/{code}", regH.DeleteAuthCode)
			})
		})
	})

	return r
}
