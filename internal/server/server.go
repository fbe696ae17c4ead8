package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"gymsched/internal/auth"
	"gymsched/internal/config"
	"gymsched/internal/reset"
	"gymsched/internal/schedule"
	"gymsched/internal/template"
	"gymsched/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config

	// Reset is exposed so main can hook the weekly cron onto it.
	Reset reset.Service
}

func New(db *sqlx.DB, cfg *config.Config, redisClient *redis.Client) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	userRepo := user.NewRepository(db)
	templateRepo := template.NewRepository(db)
	scheduleRepo := schedule.NewRepository(db)

	templateService := template.NewService(templateRepo)
	scheduleService := schedule.NewService(scheduleRepo, templateRepo)
	resetLock := reset.NewCronLock(redisClient)
	resetService := reset.NewService(scheduleRepo, templateRepo, resetLock, cfg.ResetItemTimeout)

	userHandler := user.NewHandler(userRepo, cfg.JWTSecret)
	templateHandler := template.NewHandler(templateService)
	scheduleHandler := schedule.NewHandler(scheduleService)
	resetHandler := reset.NewHandler(resetService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/schedules/templates", templateHandler.CreateTemplate)
		protected.GET("/schedules/templates", templateHandler.ListTemplates)
		protected.GET("/schedules/templates/:id", templateHandler.GetTemplate)
		protected.PUT("/schedules/templates/:id", templateHandler.UpdateTemplate)
		protected.DELETE("/schedules/templates/:id", templateHandler.DeleteTemplate)

		protected.POST("/schedules/active", scheduleHandler.CreateSchedule)
		protected.GET("/schedules/active", scheduleHandler.ListSchedules)
		protected.GET("/schedules/active/:id", scheduleHandler.GetSchedule)
		protected.DELETE("/schedules/active/:id", scheduleHandler.DeleteSchedule)
		protected.POST("/schedules/active/:id/staff", scheduleHandler.AssignStaff)
		protected.DELETE("/schedules/active/:id/staff/:coachID", scheduleHandler.UnassignStaff)
		protected.POST("/schedules/active/:id/reset", resetHandler.ResetSchedule)

		protected.POST("/schedules/:id/days/:dayOfWeek/timeslots/:timeslotID/join", scheduleHandler.JoinTimeslot)
		protected.POST("/schedules/:id/days/:dayOfWeek/timeslots/:timeslotID/leave", scheduleHandler.LeaveTimeslot)
		protected.GET("/schedules/available", scheduleHandler.AvailableSchedules)
		protected.GET("/schedules/me", scheduleHandler.MySchedule)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.POST("/gyms/:gymID/schedules/reset", resetHandler.ResetGymSchedules)
		admin.POST("/schedules/reset-all", resetHandler.ResetAllSchedules)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		Reset:  resetService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
