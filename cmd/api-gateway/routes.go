package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-scheduler-api/internal/handler"
	"github.com/noah-isme/exam-scheduler-api/internal/middleware"
	"github.com/noah-isme/exam-scheduler-api/internal/models"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	"github.com/noah-isme/exam-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-scheduler-api/pkg/middleware/requestid"
)

const tokenIssuer = "exam-scheduler-api"

type routeDeps struct {
	auth       middleware.TokenValidator
	metrics    *service.MetricsService
	catalog    *handler.CatalogHandler
	schedule   *handler.ScheduleHandler
	conflicts  *handler.ConflictHandler
	exports    *handler.ExportHandler
	imports    *handler.ImportHandler
	feeds      *handler.FeedHandler
	monitoring *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.monitoring.Health)
	r.GET("/ready", deps.monitoring.Ready)
	r.GET("/metrics", deps.monitoring.Prometheus)
	r.GET("/feeds/:token", deps.feeds.Feed)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	adminOrSelf := middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf)

	api := r.Group(cfg.APIPrefix, middleware.JWT(deps.auth))

	api.GET("/courses", deps.catalog.ListCourses)
	api.PUT("/courses", admin, middleware.Audit(logr, "courses.replace"), deps.catalog.ReplaceCourses)
	api.GET("/instructors", deps.catalog.ListInstructors)
	api.PUT("/instructors", admin, middleware.Audit(logr, "instructors.replace"), deps.catalog.ReplaceInstructors)
	api.GET("/rooms", deps.catalog.ListRooms)
	api.PUT("/rooms", admin, middleware.Audit(logr, "rooms.replace"), deps.catalog.ReplaceRooms)
	api.POST("/rooms/:id/seat-colors/clear", admin, middleware.Audit(logr, "rooms.clear_seat_colors"), deps.catalog.ClearUsedSeatColors)
	api.GET("/students", deps.catalog.ListStudents)
	api.PUT("/students", admin, middleware.Audit(logr, "students.replace"), deps.catalog.ReplaceStudents)

	api.GET("/exams", deps.catalog.ListExams)
	api.GET("/exams/export", admin, deps.exports.Timetable)
	api.PUT("/exams", admin, middleware.Audit(logr, "exams.replace"), deps.catalog.ReplaceExams)
	api.DELETE("/exams", admin, middleware.Audit(logr, "exams.clear"), deps.catalog.ClearExams)
	api.DELETE("/exams/:id", admin, middleware.Audit(logr, "exams.delete"), deps.catalog.DeleteExam)

	api.GET("/instructors/:id/exams", adminOrSelf, deps.catalog.InstructorExams)
	api.GET("/instructors/:id/exams.ics", adminOrSelf, deps.exports.InstructorCalendar)
	api.GET("/students/:id/exams", adminOrSelf, deps.catalog.StudentExams)
	api.GET("/students/:id/exams.ics", adminOrSelf, deps.exports.StudentCalendar)
	api.GET("/instructors/:id/calendar-link", adminOrSelf, deps.feeds.InstructorLink)
	api.GET("/students/:id/calendar-link", adminOrSelf, deps.feeds.StudentLink)

	api.POST("/import/:collection", admin, middleware.Audit(logr, "collection.import"), deps.imports.Import)

	schedule := api.Group("/schedule", admin)
	schedule.POST("/auto", middleware.Audit(logr, "schedule.run"), deps.schedule.Auto)
	schedule.POST("/preview", deps.schedule.Preview)
	schedule.POST("/jobs", middleware.Audit(logr, "schedule.submit"), deps.schedule.SubmitJob)
	schedule.GET("/jobs/:id", deps.schedule.GetJob)
	schedule.DELETE("/jobs/:id", middleware.Audit(logr, "schedule.cancel"), deps.schedule.CancelJob)
	schedule.GET("/summary", deps.schedule.Summary)

	api.GET("/conflicts", admin, deps.conflicts.Report)
	api.GET("/conflicts/export", admin, deps.exports.Conflicts)

	return r
}
