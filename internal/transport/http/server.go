package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cerajamme/myPUPQC-chatbot/internal/ai"
	appsvc "github.com/cerajamme/myPUPQC-chatbot/internal/app"
	"github.com/cerajamme/myPUPQC-chatbot/internal/bootstrap"
	"github.com/cerajamme/myPUPQC-chatbot/internal/cache"
	"github.com/cerajamme/myPUPQC-chatbot/internal/pkg/pdfextract"
	"github.com/cerajamme/myPUPQC-chatbot/internal/platform/rabbitmq"
	"github.com/cerajamme/myPUPQC-chatbot/internal/repository"
	"github.com/cerajamme/myPUPQC-chatbot/internal/transport/http/handler"
	"github.com/cerajamme/myPUPQC-chatbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	cfg := app.Config

	userRepo := repository.NewUserRepository(app.MySQL)
	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	chatRepo := repository.NewDirectChatRepository(app.MySQL)
	msgRepo := repository.NewDirectMessageRepository(app.MySQL)
	convRepo := repository.NewConversationRepository(app.MySQL)

	responder := buildResponder(app, docRepo, chunkRepo)

	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	pollCache := cache.NewPollCache(
		app.Redis,
		time.Duration(cfg.Redis.PollTTLSeconds)*time.Second,
		time.Duration(cfg.Redis.PollDirtyTTLSeconds)*time.Second,
	)
	relayService := appsvc.NewRelayService(chatRepo, msgRepo, pollCache, app.Log)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(responder)
	directHandler := handler.NewDirectHandler(relayService)
	adminHandler := handler.NewAdminHandler(responder, convRepo, cfg, app.StudentChatbot.ID, app.Log)
	healthHandler := handler.NewHealthHandler(app, responder)

	router.GET("/healthz", healthHandler.Check)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(cfg.Auth.JWTSecret), authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("/student", chatHandler.StudentChat)
	chatGroup.POST("/direct/message", directHandler.PostMessage)
	chatGroup.GET("/direct/poll", directHandler.Poll)
	chatGroup.POST("/direct/close", directHandler.Close)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(middleware.AuthJWT(cfg.Auth.JWTSecret))
	adminGroup.POST("/student/upload", adminHandler.UploadDocument)
	adminGroup.GET("/student/documents", adminHandler.ListDocuments)
	adminGroup.DELETE("/student/documents/:id", adminHandler.DeleteDocument)
	adminGroup.POST("/student/test-chat", chatHandler.TestChat)
	adminGroup.GET("/student/analytics", adminHandler.Analytics)
	adminGroup.GET("/direct/chats", directHandler.ListChats)
	adminGroup.GET("/direct/chats/:id/messages", directHandler.ListChatMessages)
	adminGroup.POST("/direct/chats/:id/message", directHandler.PostAdminMessage)
	adminGroup.DELETE("/direct/chats/:id", directHandler.CloseChat)

	return router
}

// buildResponder picks the service variant once at startup: the full
// pipeline when the LLM is configured, otherwise a degraded stand-in that
// keeps the endpoints answering.
func buildResponder(app *bootstrap.App, docRepo *repository.DocumentRepository, chunkRepo *repository.ChunkRepository) appsvc.Responder {
	cfg := app.Config
	chatCfg := ai.ChatConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	if !chatCfg.Valid() {
		app.Log.Warn("llm configuration incomplete, starting degraded responder")
		return appsvc.NewDegradedResponder(app.Log)
	}

	publisher := rabbitmq.NewConversationPublisher(app.MQConn, cfg.RabbitMQ.ConversationPersistQueue)
	return appsvc.NewStudentService(appsvc.StudentServiceParams{
		ChatbotID: app.StudentChatbot.ID,
		Intents:   appsvc.NewIntentClassifier(),
		Retriever: appsvc.NewLexicalRetriever(docRepo, chunkRepo, cfg.RAG.TopK),
		Generator: appsvc.NewAnswerGenerator(ai.NewOpenAICompatibleClient(), chatCfg, app.Log),
		Chunker:   appsvc.NewChunker(cfg.RAG.ChunkSize),
		Docs:      docRepo,
		Chunks:    chunkRepo,
		Publisher: publisher,
		Extract:   pdfextract.ExtractPages,
		Analytics: cfg.Analytics.Enabled,
		LLMReady:  true,
		Log:       app.Log,
	})
}
