// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"pustakalaya/internal/domain/activity"
	"pustakalaya/internal/domain/catalogs/member"
	"pustakalaya/internal/domain/catalogs/title"
	"pustakalaya/internal/domain/circulation"
	"pustakalaya/internal/domain/importer"
	"pustakalaya/internal/domain/reports"
	"pustakalaya/internal/infrastructure/http/v1/handlers"
	"pustakalaya/internal/infrastructure/http/v1/middleware"
	"pustakalaya/internal/infrastructure/storage/postgres"
	"pustakalaya/internal/infrastructure/storage/postgres/activity_repo"
	"pustakalaya/internal/infrastructure/storage/postgres/loan_repo"
	"pustakalaya/internal/infrastructure/storage/postgres/member_repo"
	"pustakalaya/internal/infrastructure/storage/postgres/report_repo"
	"pustakalaya/internal/infrastructure/storage/postgres/title_repo"
	"pustakalaya/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Logger    *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// Repositories share the injected transaction manager; services compose
	// repository calls inside transactions it carries through the context.
	titleRepo := title_repo.NewTitleRepo(cfg.TxManager)
	memberRepo := member_repo.NewMemberRepo(cfg.TxManager)
	loanRepo := loan_repo.NewLoanRepo(cfg.TxManager)
	activityRepo := activity_repo.NewActivityRepo(cfg.TxManager)
	reportRepo := report_repo.NewReportRepo(cfg.TxManager)

	activityService := activity.NewService(activityRepo)
	titleService := title.NewService(titleRepo, loanRepo, activityService, cfg.TxManager)
	memberService := member.NewService(memberRepo, activityService, cfg.TxManager)
	circulationService := circulation.NewService(loanRepo, titleService, memberService, activityService, cfg.TxManager)
	importPipeline := importer.NewPipeline(titleRepo, activityService, cfg.TxManager)
	reportService := reports.NewService(reportRepo, circulationService, activityService)

	base := handlers.NewBaseHandler()
	titleHandler := handlers.NewTitleHandler(base, titleService)
	memberHandler := handlers.NewMemberHandler(base, memberService)
	circulationHandler := handlers.NewCirculationHandler(base, circulationService)
	activityHandler := handlers.NewActivityHandler(base, activityService)
	importHandler := handlers.NewImportHandler(base, importPipeline)
	reportsHandler := handlers.NewReportsHandler(base, reportService)

	api := router.Group("/api/v1")
	api.Use(middleware.Viewer())
	{
		titleHandler.RegisterRoutes(api.Group("/titles"))
		memberHandler.RegisterRoutes(api.Group("/members"))
		circulationHandler.RegisterRoutes(api.Group("/loans"))
		activityHandler.RegisterRoutes(api.Group("/activity"))
		activityHandler.RegisterNoticeRoutes(api.Group("/notices"))
		importHandler.RegisterRoutes(api.Group("/import"))
		reportsHandler.RegisterRoutes(api.Group("/reports"))
	}

	return router
}
