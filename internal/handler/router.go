package handler

import (
	"html/template"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-tracker/internal/middleware"
	"github.com/noah-isme/attendance-tracker/internal/service"
	"github.com/noah-isme/attendance-tracker/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-tracker/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-tracker/pkg/middleware/requestid"
)

// RouterDeps carries everything NewRouter mounts.
type RouterDeps struct {
	Attendance     *AttendanceHandler
	Metrics        *MetricsHandler
	MetricsService *service.MetricsService
	Templates      *template.Template
	Logger         *zap.Logger
	AllowedOrigins []string
	Docs           bool
}

// NewRouter builds the gin engine for the attendance server.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.MetricsService))
	if deps.Templates != nil {
		r.SetHTMLTemplate(deps.Templates)
	}

	if deps.Metrics != nil {
		r.GET("/health", deps.Metrics.Health)
		r.GET("/ready", deps.Metrics.Ready)
		r.GET("/metrics", deps.Metrics.Prometheus)
	}
	if deps.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := deps.Attendance
	r.GET("/", h.Index)
	r.POST("/add", h.Create)
	r.POST("/update/:id", h.Update)
	r.GET("/delete/:id", h.Delete)
	r.GET("/search", h.Search)
	r.GET("/export", h.Export)
	r.GET("/api/record/:id", h.Record)

	return r
}
