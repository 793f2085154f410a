// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, authentication, idempotency, and rate
// limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-benefits-backend/docs"
	"github.com/tbourn/go-benefits-backend/internal/config"
	"github.com/tbourn/go-benefits-backend/internal/domain"
	"github.com/tbourn/go-benefits-backend/internal/http/handlers"
	"github.com/tbourn/go-benefits-backend/internal/http/middleware"
	"github.com/tbourn/go-benefits-backend/internal/services"
)

// multipartSlack is added to the upload cap for multipart boundaries and
// form fields, so a file of exactly IMPORT_MAX_BYTES still fits.
const multipartSlack = 1 << 20

var corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}

// authenticator adapts AuthService to the middleware contract.
func authenticator(svc *services.AuthService) middleware.Authenticator {
	return func(ctx context.Context, email, password string) (*domain.User, error) {
		u, err := svc.Authenticate(ctx, email, password)
		if errors.Is(err, services.ErrInvalidCredentials) {
			return nil, middleware.ErrBadCredentials
		}
		return u, err
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (upload cap plus multipart slack)
//  6. Metrics
//  7. gzip compression
//  8. CORS and Security headers
//
// The API group then runs Authenticate, the idempotency validator (needs the
// user) and the rate limiter (skips replays), and each route declares the
// roles allowed to call it.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit
	r.Use(limitBody(cfg.Import.MaxBytes + multipartSlack))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics("/metrics", "/health"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compress JSON and CSV responses
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/swagger"})))

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", handlers.HeaderIdempotentReplayed},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", handlers.HeaderIdempotentReplayed},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	base := cfg.APIBasePath
	if base == "/" {
		base = ""
	}
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStorePaths: []string{base + "/users", base + "/discounts/export", base + "/discounts/imports"},
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/config
	authSvc := &services.AuthService{DB: db}
	importSvc := &services.ImportService{
		DB:        db,
		Delimiter: cfg.Import.Delimiter,
		MaxBytes:  cfg.Import.MaxBytes,
		RunTTL:    cfg.Import.RunTTL,
	}
	h := handlers.New(handlers.Services{
		Categories: &services.CategoryService{DB: db},
		Companies:  &services.CompanyService{DB: db},
		Locations:  &services.LocationService{DB: db},
		Discounts:  &services.DiscountService{DB: db},
		Imports:    importSvc,
		Users:      &services.UserService{DB: db},
	})

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(
		middleware.Authenticate(authenticator(authSvc)),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, importSvc.IsReplay),
		rl.Handler(),
	)

	editors := middleware.RequireRole(domain.RoleAdmin, domain.RoleModerator)
	admins := middleware.RequireRole(domain.RoleAdmin)
	{
		// Categories
		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:id", h.GetCategory)
		api.POST("/categories", editors, h.CreateCategory)
		api.PUT("/categories/:id", editors, h.UpdateCategory)
		api.DELETE("/categories/:id", admins, h.DeleteCategory)

		// Companies
		api.GET("/companies", h.ListCompanies)
		api.GET("/companies/:id", h.GetCompany)
		api.POST("/companies", editors, h.CreateCompany)
		api.PUT("/companies/:id", editors, h.UpdateCompany)
		api.DELETE("/companies/:id", admins, h.DeleteCompany)

		// Locations
		api.GET("/locations", h.ListLocations)
		api.GET("/locations/:id", h.GetLocation)
		api.POST("/locations", editors, h.CreateLocation)
		api.PUT("/locations/:id", editors, h.UpdateLocation)
		api.DELETE("/locations/:id", admins, h.DeleteLocation)

		// Discounts
		api.GET("/discounts", h.ListDiscounts)
		api.GET("/discounts/:id", h.GetDiscount)
		api.POST("/discounts", editors, h.CreateDiscount)
		api.PUT("/discounts/:id", editors, h.UpdateDiscount)
		api.DELETE("/discounts/:id", editors, h.DeleteDiscount)

		// CSV import/export
		api.POST("/discounts/upload", editors, h.UploadDiscounts)
		api.GET("/discounts/imports/:id", editors, h.GetImport)
		api.GET("/discounts/export", editors, h.ExportDiscounts)

		// Users
		api.GET("/roles", admins, h.ListRoles)
		api.GET("/users/me", h.Me)
		api.GET("/users", admins, h.ListUsers)
		api.GET("/users/:id", admins, h.GetUser)
		api.POST("/users", admins, h.CreateUser)
		api.PUT("/users/:id", admins, h.UpdateUser)
		api.DELETE("/users/:id", admins, h.DeleteUser)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
