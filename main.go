package main

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/ServanaApplication/servana-backend/internal/blob"
	"github.com/ServanaApplication/servana-backend/internal/config"
	"github.com/ServanaApplication/servana-backend/internal/db"
	"github.com/ServanaApplication/servana-backend/internal/handlers"
	"github.com/ServanaApplication/servana-backend/internal/middleware"
	"github.com/ServanaApplication/servana-backend/internal/models"
	"github.com/ServanaApplication/servana-backend/internal/observability"
	"github.com/ServanaApplication/servana-backend/internal/rabbitmq"
	"github.com/ServanaApplication/servana-backend/internal/repositories"
	"github.com/ServanaApplication/servana-backend/internal/telemetry"
	"github.com/ServanaApplication/servana-backend/internal/ws"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.OTLPEndpoint, "servana-backend", cfg.Env)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	database, err := db.Connect(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	store, err := blob.NewStore(cfg)
	if err != nil {
		logger.Fatal("failed to set up blob store", zap.Error(err))
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	logger.Info("event publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)))

	emitter := telemetry.NewAuditEmitter(publisher, "audit.logs", "servana-backend", cfg.Env)

	userRepo := repositories.NewUserRepo(database)
	clientRepo := repositories.NewClientRepo(database)
	groupRepo := repositories.NewChatGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	deptRepo := repositories.NewDepartmentRepo(database)
	macroRepo := repositories.NewMacroRepo(database)
	autoReplyRepo := repositories.NewAutoReplyRepo(database)
	profileRepo := repositories.NewProfileRepo(database)

	hub := ws.NewHub()

	authHandler := handlers.NewAuthHandler(userRepo, emitter, cfg.JWTSecret, cfg.IsProduction())
	clientsHandler := handlers.NewClientsHandler(clientRepo, groupRepo, cfg.JWTSecret)
	chatHandler := handlers.NewChatHandler(groupRepo, messageRepo, profileRepo)
	profileHandler := handlers.NewProfileHandler(profileRepo, userRepo, store)
	deptHandler := handlers.NewDepartmentsHandler(deptRepo)
	adminsHandler := handlers.NewAdminsHandler(userRepo, emitter)
	agentsHandler := handlers.NewAgentsHandler(userRepo, deptRepo, emitter)
	rolesHandler := handlers.NewRolesHandler(userRepo, emitter)
	agentMacros := handlers.NewAgentMacrosHandler(macroRepo, deptRepo)
	clientMacros := handlers.NewClientMacrosHandler(macroRepo, deptRepo)
	autoReplies := handlers.NewAutoRepliesHandler(autoReplyRepo)
	mobileHandler := handlers.NewMobileHandler(groupRepo, messageRepo, profileRepo, hub)
	relay := ws.NewRelayHandler(hub, groupRepo, messageRepo, publisher, cfg.JWTSecret, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("servana-backend"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Device-Id"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MinioEndpoint == "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/refresh", authHandler.Refresh)
	router.POST("/auth/logout", authHandler.Logout)

	router.POST("/clients/register", clientsHandler.Register)
	router.POST("/clients/login", clientsHandler.Login)

	router.GET("/ws", relay.Handle)

	agentAuth := middleware.AgentAuth(cfg.JWTSecret)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	session := router.Group("/", agentAuth)
	{
		session.GET("/auth/me", authHandler.Me)

		session.GET("/chat/chatgroups", chatHandler.ListChatGroups)
		session.GET("/chat/queues", chatHandler.ListQueues)
		session.GET("/chat/:clientId", chatHandler.History)

		session.GET("/profile", profileHandler.Get)
		session.PUT("/profile", profileHandler.Update)
		session.POST("/profile/image", profileHandler.UploadImage)

		session.GET("/agents", agentMacros.List)
		session.POST("/agents", agentMacros.Create)
		session.PUT("/agents/:id", agentMacros.Update)
		session.PUT("/agents/:id/toggle", agentMacros.Toggle)

		session.GET("/clients/macros", clientMacros.List)
		session.POST("/clients/macros", clientMacros.Create)
		session.PUT("/clients/macros/:id", clientMacros.Update)
		session.PUT("/clients/macros/:id/toggle", clientMacros.Toggle)

		session.GET("/auto-replies", autoReplies.List)
		session.POST("/auto-replies", autoReplies.Create)
		session.PUT("/auto-replies/:id", autoReplies.Update)
		session.PUT("/auto-replies/:id/toggle", autoReplies.Toggle)

		session.GET("/departments", deptHandler.List)

		admin := session.Group("/", adminOnly)
		{
			admin.POST("/departments", deptHandler.Create)
			admin.PUT("/departments/:id", deptHandler.Update)
			admin.PUT("/departments/:id/toggle", deptHandler.Toggle)

			admin.GET("/admins", adminsHandler.List)
			admin.POST("/admins", adminsHandler.Create)
			admin.PUT("/admins/:id", adminsHandler.Update)
			admin.PUT("/admins/:id/toggle", adminsHandler.Toggle)

			admin.GET("/manage-agents/agents", agentsHandler.List)
			admin.GET("/manage-agents/departments", agentsHandler.ListDepartments)
			admin.POST("/manage-agents/agents", agentsHandler.Create)
			admin.PUT("/manage-agents/agents/:id", agentsHandler.Update)

			admin.PUT("/change-role/:id", rolesHandler.Change)
		}
	}

	clientAuth := middleware.ClientAuth(cfg.JWTSecret)
	mobile := router.Group("/mobile", clientAuth)
	{
		mobile.POST("/messages", mobileHandler.PostMessage)
		mobile.GET("/messages/group/:id", mobileHandler.GroupMessages)
		mobile.GET("/agent/:chatGroupId", mobileHandler.LatestAgent)
		mobile.PATCH("/chat_group/:id/set-department", mobileHandler.SetDepartment)
	}

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zcfg.Level = level
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
