package api

import (
	"net/http"

	"github.com/aldenhart/docspace/internal/api/handler"
	customMiddleware "github.com/aldenhart/docspace/internal/api/middleware"
	"github.com/aldenhart/docspace/internal/config"
	"github.com/aldenhart/docspace/internal/repository/postgres"
	"github.com/aldenhart/docspace/internal/repository/redis"
	"github.com/aldenhart/docspace/internal/security"
	"github.com/aldenhart/docspace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	spaceRepo := postgres.NewSpaceRepository(db)
	memberRepo := postgres.NewSpaceMemberRepository(db)
	invitationRepo := postgres.NewSpaceInvitationRepository(db)
	grantRepo := postgres.NewGrantRepository(db)
	documentRepo := postgres.NewDocumentRepository(db)
	commentRepo := postgres.NewCommentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Initialize rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Initialize services
	resolver := service.NewPermissionResolver(memberRepo, grantRepo, documentRepo, commentRepo)
	authService := service.NewAuthService(userRepo, memberRepo, jwtManager)
	spaceService := service.NewSpaceService(spaceRepo, memberRepo, resolver)
	memberService := service.NewMemberService(memberRepo, resolver)
	invitationService := service.NewInvitationService(
		invitationRepo,
		memberRepo,
		userRepo,
		spaceRepo,
		notificationRepo,
		resolver,
		cfg.Invites.DefaultExpiryDays,
		cfg.Invites.DefaultMaxUses,
	)
	documentService := service.NewDocumentService(documentRepo, commentRepo, resolver)
	notificationService := service.NewNotificationService(notificationRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	spaceHandler := handler.NewSpaceHandler(spaceService)
	memberHandler := handler.NewMemberHandler(memberService, invitationService)
	permissionHandler := handler.NewPermissionHandler(resolver)
	documentHandler := handler.NewDocumentHandler(documentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/me", authHandler.Me)

			// Permission routes
			r.Route("/permissions", func(r chi.Router) {
				r.Post("/grants", permissionHandler.Grant)
				r.Get("/check", permissionHandler.Check)
				r.Get("/me", permissionHandler.Me)
			})

			// Invitation redemption is addressed by token, not space
			r.Post("/invitations/accept", memberHandler.Accept)

			// Notification routes
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{notificationID}/read", notificationHandler.MarkRead)
			})

			// Space routes
			r.Route("/spaces", func(r chi.Router) {
				r.Get("/", spaceHandler.List)
				r.Post("/", spaceHandler.Create)

				r.Route("/{spaceID}", func(r chi.Router) {
					r.Use(customMiddleware.SpaceContext)

					r.Get("/", spaceHandler.Get)
					r.Patch("/", spaceHandler.Update)
					r.Delete("/", spaceHandler.Delete)

					// Member routes
					r.Route("/members", func(r chi.Router) {
						r.Get("/", memberHandler.List)
						r.Patch("/{userID}", memberHandler.Update)
						r.Delete("/{userID}", memberHandler.Remove)
					})

					// Invitation routes
					r.Route("/invitations", func(r chi.Router) {
						r.Get("/", memberHandler.ListInvitations)
						r.Post("/", memberHandler.Invite)
						r.Post("/decline", memberHandler.Decline)
					})

					// Document routes
					r.Route("/documents", func(r chi.Router) {
						r.Get("/", documentHandler.List)
						r.Post("/", documentHandler.Create)
					})
				})
			})

			// Document routes addressed by document ID
			r.Route("/documents/{documentID}", func(r chi.Router) {
				r.Get("/", documentHandler.Get)
				r.Route("/comments", func(r chi.Router) {
					r.Get("/", documentHandler.ListComments)
					r.Post("/", documentHandler.CreateComment)
				})
			})

			r.Get("/comments/{commentID}", documentHandler.GetComment)
		})
	})

	return r
}
