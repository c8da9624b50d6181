package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"washfinder/internal/config"
	"washfinder/internal/handler"
	"washfinder/internal/repository"
	"washfinder/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Washfinder Shopping Assistant")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	log.Println("✅ Connected to PostgreSQL database")

	// Initialize OpenAI client
	var openaiClient *service.OpenAIClient
	if cfg.OpenAI.Enabled {
		openaiClient = service.NewOpenAIClient(cfg.OpenAI)
		log.Printf("✅ OpenAI client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Embedding model: %s", cfg.OpenAI.EmbeddingModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
		log.Printf("   - Chat MaxTokens: %d", cfg.OpenAI.ChatMaxTokens)
	} else {
		log.Println("⚠️  OpenAI is disabled - questions and explanations fall back to canned text")
		log.Println("   Set OPENAI_API_KEY environment variable to enable AI features")
	}

	// Initialize services. The nil-interface dance matters: a typed nil
	// *OpenAIClient stored in an interface would not compare equal to nil.
	var oracle service.FilterOracle
	var chat service.ChatModel
	var embedder service.Embedder
	if openaiClient != nil {
		oracle = openaiClient
		chat = openaiClient
		embedder = openaiClient
	}

	catalog := service.NewBrandCatalog(repo)
	extractor := service.NewExtractor(oracle, catalog)
	reranker := service.NewReranker(embedder)
	productSearch := service.NewProductSearchService(repo, reranker, cfg.Search)
	questions := service.NewQuestionService(chat)
	answers := service.NewAnswerService(chat, cfg.Search.DimensionToleranceCm)
	conversations := service.NewConversationService(
		extractor, productSearch, catalog, questions, answers, repo,
		cfg.Search, cfg.Conversation,
	)
	oneShotSearch := service.NewSearchService(extractor, repo, reranker, answers, cfg.Search)

	log.Println("✅ Services initialized")

	// Initialize handlers
	conversationHandler := handler.NewConversationHandler(conversations)
	searchHandler := handler.NewSearchHandler(oneShotSearch, catalog)
	productHandler := handler.NewProductHandler(repo)
	embeddingHandler := handler.NewEmbeddingHandler(repo, reranker, cfg.OpenAI.EmbeddingDimensions)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "washfinder",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Conversation endpoints
		apiV1.POST("/conversations", conversationHandler.Start)
		apiV1.POST("/conversations/:id/messages", conversationHandler.Reply)
		apiV1.POST("/conversations/:id/events", conversationHandler.Event)

		// One-shot search and catalog endpoints
		apiV1.GET("/search", searchHandler.Search)
		apiV1.GET("/products/:id", productHandler.Get)
		apiV1.GET("/brands", searchHandler.Brands)
		apiV1.POST("/brands/refresh", searchHandler.RefreshBrands)

		// Embedding endpoints
		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
