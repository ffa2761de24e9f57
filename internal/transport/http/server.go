package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"winkclass/internal/ai"
	appsvc "winkclass/internal/app"
	"winkclass/internal/bootstrap"
	"winkclass/internal/cache"
	"winkclass/internal/platform/rabbitmq"
	"winkclass/internal/repository"
	"winkclass/internal/transport/http/handler"
	"winkclass/internal/transport/http/middleware"
	"winkclass/internal/vectorstore"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	requestTimeout := time.Duration(app.Config.OpenAI.RequestTimeoutSecond) * time.Second
	indexClient := vectorstore.NewClient(vectorstore.Config{
		BaseURL: app.Config.OpenAI.BaseURL,
		APIKey:  app.Config.OpenAI.APIKey,
		Timeout: requestTimeout,
	})
	chatConfig := ai.ChatConfig{
		BaseURL: app.Config.OpenAI.BaseURL,
		APIKey:  app.Config.OpenAI.APIKey,
		Model:   app.Config.OpenAI.Model,
	}

	instructorRepo := repository.NewInstructorRepository(app.MySQL)
	fileRepo := repository.NewInstructorFileRepository(app.MySQL)
	auditPublisher := rabbitmq.NewAuditPublisher(app.MQConn, app.Config.RabbitMQ.AuditEventQueue)
	transcripts := cache.NewTranscriptCache(
		app.Redis,
		time.Duration(app.Config.Chat.TranscriptTTLSeconds)*time.Second,
	)

	instructorService := appsvc.NewInstructorService(
		instructorRepo,
		repository.NewAuditEventRepository(app.MySQL),
		indexClient,
		auditPublisher,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	documentService := appsvc.NewDocumentService(
		fileRepo,
		indexClient,
		auditPublisher,
		app.Config.Upload.Dir,
		app.Config.Upload.MaxUploadMB,
		app.Config.OpenAI.CommonVectorStoreID,
	)
	composer := appsvc.NewAnswerComposer(
		ai.NewResponsesClient(requestTimeout),
		chatConfig,
		app.Config.OpenAI.CommonVectorStoreID,
	)
	chatService := appsvc.NewChatService(
		instructorRepo,
		transcripts,
		composer,
		app.Config.Chat.MaxTranscriptTurns,
	)

	instructorHandler := handler.NewInstructorHandler(instructorService, documentService)
	fileHandler := handler.NewFileHandler(instructorService, documentService)
	chatHandler := handler.NewChatHandler(chatService)

	v1 := router.Group("/api/v1")

	instructors := v1.Group("/instructors")
	instructors.POST("/register", instructorHandler.Register)
	instructors.POST("/login", instructorHandler.Login)
	instructors.GET("", instructorHandler.List)
	instructors.GET("/:slug", instructorHandler.Profile)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	authed.GET("/me", instructorHandler.Me)
	authed.PUT("/me", instructorHandler.UpdateMe)
	authed.GET("/me/audit", instructorHandler.AuditTrail)
	authed.POST("/files", fileHandler.Upload)
	authed.GET("/files", fileHandler.List)
	authed.DELETE("/files/:file_id", fileHandler.Delete)

	chat := v1.Group("/chat")
	chat.POST("/:slug", chatHandler.Send)
	chat.GET("/:slug/history", chatHandler.History)
	chat.POST("/:slug/reset", chatHandler.Reset)

	return router
}
