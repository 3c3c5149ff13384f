package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campushq/studentdesk/internal/handler"
	"github.com/campushq/studentdesk/internal/middleware"
	"github.com/campushq/studentdesk/internal/repository"
	"github.com/campushq/studentdesk/internal/service"
	"github.com/campushq/studentdesk/pkg/config"
	"github.com/campushq/studentdesk/pkg/database"
	"github.com/campushq/studentdesk/pkg/logger"
	reqidmiddleware "github.com/campushq/studentdesk/pkg/middleware/requestid"
	"github.com/campushq/studentdesk/pkg/netutil"
	"github.com/campushq/studentdesk/pkg/response"
	"github.com/campushq/studentdesk/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	uploads, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload directory", "error", err)
	}
	qrFiles, err := storage.NewLocalStorage(cfg.Storage.QRDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare qr directory", "error", err)
	}

	host := cfg.PublicHost
	if host == "" {
		host = netutil.OutboundIP()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	studentRepo := repository.NewStudentRepository(db, metricsSvc)
	documentRepo := repository.NewDocumentRepository(db, metricsSvc)

	authSvc := service.NewAuthService(studentRepo, logr)
	intakeSvc := service.NewIntakeService(uploads, nil, logr)
	qrSvc := service.NewQRService(qrFiles, host, cfg.Port, logr)
	studentSvc := service.NewStudentService(studentRepo, documentRepo, intakeSvc, qrSvc, uploads, validate, logr, cfg.Accounts.StudentDefaultPassword)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := studentSvc.EnsureAdmin(ctx, cfg.Accounts.AdminDefaultPassword); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to bootstrap admin account", "error", err)
	}
	cancel()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(cfg.Session.Name, store))
	r.Use(middleware.Session(authSvc))

	r.LoadHTMLGlob("templates/*")

	authHandler := handler.NewAuthHandler(authSvc, logr)
	adminHandler := handler.NewAdminHandler(studentSvc, logr)
	portalHandler := handler.NewPortalHandler(studentSvc)
	fileHandler := handler.NewFileHandler(uploads, qrFiles, documentRepo, qrSvc, logr)

	r.GET("/", authHandler.Index)
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	r.GET("/portal", middleware.RequireSession(), portalHandler.View)
	r.GET("/uploads/:filename", middleware.RequireSession(), fileHandler.ServeUpload)

	admin := r.Group("/admin", middleware.RequireAdmin())
	admin.GET("", adminHandler.Panel)
	admin.POST("", adminHandler.Submit)

	r.GET("/delete/:id", middleware.RequireAdmin(), adminHandler.DeleteStudent)
	r.GET("/delete_document/:id", middleware.RequireAdmin(), adminHandler.DeleteDocument)
	r.GET("/qr/:student_id", middleware.RequireAdmin(), fileHandler.ServeQR)

	r.GET("/health", func(c *gin.Context) {
		response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "qr_host", host)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
