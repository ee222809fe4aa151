package main

import (
	"context"
	"time"

	"chatiip-backend/chatbot"
	"chatiip-backend/citation"
	"chatiip-backend/config"
	"chatiip-backend/extractor"
	"chatiip-backend/handlers"
	"chatiip-backend/logger"
	"chatiip-backend/middleware"
	"chatiip-backend/repository"
	"chatiip-backend/search"
	"chatiip-backend/service"
	"chatiip-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, envFound, cfgErr := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !envFound {
		log.Warn("No .env file found, using environment variables")
	}
	if cfgErr != nil {
		log.Fatal("Invalid configuration", "error", cfgErr)
	}

	ctx := context.Background()

	// Initialize database connections
	db, err := initPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize Postgres", "error", err)
	}
	defer db.Close()

	// Initialize storage
	backend, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize storage", "error", err)
	}
	files := storage.NewFileStore(backend,
		storage.WithPublicPrefix(cfg.PublicPrefix),
		storage.WithFileStoreLogger(log.With("component", "filestore")),
	)
	log.Info("Storage initialized", "type", cfg.Storage.Type)

	index, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		log.Fatal("Failed to open search index", "path", cfg.SearchIndexPath, "error", err)
	}
	defer index.Close()

	extract := extractor.New(
		extractor.WithLogger(log.With("component", "extractor")),
		extractor.WithPDFToText(cfg.PDFToTextPath),
		extractor.WithPandoc(cfg.PandocPath),
		extractor.WithTimeout(cfg.ConverterTimeout),
		extractor.WithFallback(cfg.ExtractFallback),
	)

	// Initialize repositories
	docRepo := repository.NewLegalDocumentRepository(db)
	chatLogRepo := repository.NewChatLogRepository(db)
	newsRepo := repository.NewNewsRepository(db)
	userRepo := repository.NewUserRepository(db)

	answerer, closeAnswerer, err := initAnswerer(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize chatbot", "error", err)
	}
	defer closeAnswerer()

	// Initialize services
	docService := service.NewDocumentService(
		service.WithDocumentRepository(docRepo),
		service.WithBlobStore(files),
		service.WithTextExtractor(extract),
		service.WithSearchIndex(index),
		service.WithDocumentLogger(log.With("service", "documents")),
	)

	chatService := service.NewChatService(
		service.WithAnswerer(answerer),
		service.WithCitationResolver(citation.NewResolver(docService)),
		service.WithChatLogRepository(chatLogRepo),
		service.WithChatLogger(log.With("service", "chat")),
	)

	newsService := service.NewNewsService(
		service.WithNewsRepository(newsRepo),
		service.WithNewsLogger(log.With("service", "news")),
	)

	authService := service.NewAuthService(
		service.WithUserRepository(userRepo),
		service.WithJWTSecret(cfg.JWTSecret),
		service.WithTokenTTL(cfg.JWTTTL),
		service.WithAuthLogger(log.With("service", "auth")),
	)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatal("Failed to seed admin account", "error", err)
		}
		if created {
			log.Info("Default admin account created", "email", cfg.AdminEmail)
		}
	}

	if n, err := index.Count(); err == nil && n == 0 {
		reindexed, err := docService.Reindex(ctx)
		if err != nil {
			log.Warn("Initial reindex failed", "error", err)
		} else {
			log.Info("Search index rebuilt", "documents", reindexed)
		}
	}

	// Setup Gin router
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.CORSOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	if cfg.Storage.Type == storage.StorageTypeLocal {
		r.Static(cfg.PublicPrefix, cfg.Storage.LocalPath)
	}

	handlers.RegisterRoutes(r, handlers.Handlers{
		Documents: handlers.NewDocumentHandler(docService, log),
		Chat:      handlers.NewChatHandler(chatService, log),
		News:      handlers.NewNewsHandler(newsService, log),
		Auth:      handlers.NewAuthHandler(authService, cfg.CookieSecure, log),
	}, middleware.NewAuthMiddleware(log, authService))

	// Start server
	log.Info("Server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server", "error", err)
	}
}

func initPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("Database schema up to date")
	}

	log.Info("Postgres connection established")
	return pool, nil
}

// initAnswerer prefers the hosted chatbot; Gemini is used only when no
// upstream URL is configured and an API key is present
func initAnswerer(ctx context.Context, cfg *config.Config, log *logger.Logger) (chatbot.Answerer, func(), error) {
	if cfg.ChatbotUpstreamURL == "" && cfg.GeminiAPIKey != "" {
		client, err := chatbot.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, func() {}, err
		}
		log.Info("Gemini client initialized", "model", cfg.GeminiModel)
		return client, func() { _ = client.Close() }, nil
	}

	url := cfg.ChatbotUpstreamURL
	if url == "" {
		url = chatbot.DefaultUpstreamURL
	}
	log.Info("Chatbot upstream configured", "url", url)
	return chatbot.NewUpstreamClient(url, cfg.ChatbotTimeout), func() {}, nil
}
