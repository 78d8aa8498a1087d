package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/credit-risk-api/internal/application/assessment"
	"github.com/credit-risk-api/internal/application/auth"
	"github.com/credit-risk-api/internal/config"
	"github.com/credit-risk-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/credit-risk-api/internal/infrastructure/jwt"
	s3infra "github.com/credit-risk-api/internal/infrastructure/s3"
	"github.com/credit-risk-api/internal/infrastructure/smtp"
	"github.com/credit-risk-api/internal/transport/http/handler"
	appmiddleware "github.com/credit-risk-api/internal/transport/http/middleware"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       *dynamo.UserRepo
	AssessmentRepo *dynamo.AssessmentRepo
	S3Store        *s3infra.Store
	Mailer         smtp.Mailer
	JWTProvider    *jwtinfra.Provider
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

	authMw := appmiddleware.Auth(deps.JWTProvider)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:   deps.UserRepo,
		Mailer:     deps.Mailer,
		Signer:     deps.JWTProvider,
		Issuer:     cfg.MFAIssuer,
		MasterCode: cfg.MFAMasterCode,
	})
	assessmentSvc := assessment.NewService(assessment.ServiceDeps{
		Repo:    deps.AssessmentRepo,
		Archive: deps.S3Store,
	})

	authH := handler.NewAuthHandler(authSvc)
	assessmentH := handler.NewAssessmentHandler(assessmentSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/api/health", handler.Health)
	r.Post("/auth/signup", authH.Signup)
	r.Post("/auth/login", authH.Login)
	r.Post("/auth/verify-mfa", authH.VerifyMFA)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Post("/auth/update-mfa", authH.UpdateMFA)
		r.Get("/auth/setup-app-mfa", authH.SetupAppMFA)
		r.Get("/auth/user", authH.CurrentUser)

		r.Post("/analyze", assessmentH.Analyze)
		r.Get("/users", assessmentH.List)
		r.Put("/users/{id}", assessmentH.Update)
		r.Delete("/users/{id}", assessmentH.Delete)
		r.Post("/upload-csv", assessmentH.UploadCSV)
	})

	return r
}
