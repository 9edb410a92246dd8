package bootstrap

import (
	"log"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/controller"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/unitofwork"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/extraction"
	"rag-chat-be/pkg/ingestion"
	"rag-chat-be/pkg/llm/factory"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UserController       controller.IUserController
	ChatController       controller.IChatController
	KBController         controller.IKnowledgeBaseController
	AttachmentController controller.IAttachmentController

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	converter := extraction.NewHTTPConverter(cfg.Ai.ExtractionBaseURL)
	processor := ingestion.NewProcessor(converter, cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)

	// 3. Services
	userService := service.NewUserService(uowFactory)
	chatService := service.NewChatService(uowFactory, embeddingProvider, llmProvider, cfg.Rag, sysLogger)
	kbService := service.NewKnowledgeBaseService(uowFactory)
	attachmentService := service.NewAttachmentService(uowFactory)
	ingestionService := service.NewIngestionService(uowFactory, processor, embeddingProvider, sysLogger)

	// 4. Controllers
	return &Container{
		UserController:       controller.NewUserController(userService),
		ChatController:       controller.NewChatController(chatService, kbService),
		KBController:         controller.NewKnowledgeBaseController(kbService, ingestionService, cfg.App.UploadTmpDir),
		AttachmentController: controller.NewAttachmentController(attachmentService, ingestionService, cfg.App.UploadTmpDir),
		Logger:               sysLogger,
	}
}
