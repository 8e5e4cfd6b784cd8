// Package server wires repositories, services and handlers into the HTTP router.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"coursedesk/internal/config"
	"coursedesk/internal/database"
	"coursedesk/internal/domain"
	"coursedesk/internal/events"
	"coursedesk/internal/middleware"
	"coursedesk/internal/modules/auth"
	"coursedesk/internal/modules/booking"
	"coursedesk/internal/modules/catalog"
	"coursedesk/internal/modules/lead"
	"coursedesk/internal/modules/ledger"
	"coursedesk/internal/modules/payment"
	"coursedesk/internal/modules/permission"
	"coursedesk/internal/modules/report"
	"coursedesk/internal/modules/support"
	jwtsvc "coursedesk/internal/pkg/jwt"
	"coursedesk/internal/pkg/response"
	"coursedesk/internal/repository"
)

// App holds the process-wide resources the router is built from. Redis, Hub
// and Publisher may be nil.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *redis.Client
	Hub       *events.Hub
	Publisher events.Publisher
	Logger    *slog.Logger
}

// NewRouter builds the gin engine with every route mounted under /api/v1.
func NewRouter(app App) (*gin.Engine, error) {
	cfg := app.Config
	logger := app.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sx, err := database.SQLX(app.DB)
	if err != nil {
		return nil, fmt.Errorf("sqlx: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(app.DB)
	courseRepo := repository.NewCourseRepository(app.DB)
	partnerRepo := repository.NewPartnerRepository(app.DB)
	materialRepo := repository.NewMaterialRepository(app.DB)
	bookingRepo := repository.NewBookingRepository(app.DB)
	paymentRepo := repository.NewPaymentRepository(app.DB)
	supportRepo := repository.NewSupportRepository(app.DB)
	permissionRepo := repository.NewPermissionRepository(app.DB)
	leadRepo := repository.NewLeadRepository(sx)
	reportRepo := repository.NewReportRepository(sx)

	jwtService := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	publisher := events.Multi{app.Publisher}
	if app.Hub != nil {
		publisher = append(publisher, app.Hub)
	}

	// Services
	ledgerService := ledger.NewService(app.DB, publisher, logger)
	authService := auth.NewService(userRepo, jwtService)
	bookingService := booking.NewService(bookingRepo, paymentRepo, userRepo, courseRepo, partnerRepo, ledgerService, cfg.DefaultVATRate, logger)
	paymentService := payment.NewService(paymentRepo, bookingRepo, ledgerService)
	catalogService := catalog.NewService(courseRepo, partnerRepo, materialRepo, userRepo)
	leadService := lead.NewService(leadRepo, userRepo)
	supportService := support.NewService(supportRepo)
	permissionService := permission.NewService(permissionRepo, app.Redis, cfg.PermissionTTL, logger)
	reportService := report.NewService(reportRepo)

	// Handlers
	authHandler := auth.NewHandler(authService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)
	catalogHandler := catalog.NewHandler(catalogService)
	leadHandler := lead.NewHandler(leadService)
	supportHandler := support.NewHandler(supportService)
	permissionHandler := permission.NewHandler(permissionService)
	reportHandler := report.NewHandler(reportService)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.ErrorLogger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/healthz", healthz(app.DB))
	r.GET("/metrics", middleware.InternalTokenAuth(cfg.MetricsToken, cfg.MetricsAllowedIPs), gin.WrapH(promhttp.Handler()))
	if app.Hub != nil {
		events.NewWSHandler(app.Hub, jwtService, logger).RegisterRoutes(r)
	}

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(jwtService))
		authHandler.RegisterProtectedRoutes(protected)

		staff := protected.Group("")
		staff.Use(middleware.RequireRole(domain.RoleTeacher, domain.RoleAdmin))
		staff.Use(permission.RequirePage(permissionService, domain.PageMaterials))

		admin := protected.Group("")
		admin.Use(middleware.AdminOnly())

		catalogHandler.RegisterRoutes(protected, staff, admin)
		permissionHandler.RegisterRoutes(protected, admin)

		supportGroup := protected.Group("")
		supportGroup.Use(permission.RequirePage(permissionService, domain.PageSupport))
		supportHandler.RegisterRoutes(supportGroup, admin)

		bookingHandler.RegisterRoutes(admin.Group("", permission.RequirePage(permissionService, domain.PageBookings)))
		paymentHandler.RegisterRoutes(admin.Group("", permission.RequirePage(permissionService, domain.PagePayments)))
		reportHandler.RegisterRoutes(admin.Group("", permission.RequirePage(permissionService, domain.PageReports)))
		leadHandler.RegisterRoutes(v1, admin.Group("", permission.RequirePage(permissionService, domain.PageLeads)))
		authHandler.RegisterAdminRoutes(admin.Group("", permission.RequirePage(permissionService, domain.PageStudents)))
	}

	return r, nil
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.ErrorWithDetails(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database not reachable", err.Error())
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
