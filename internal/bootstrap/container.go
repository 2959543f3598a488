package bootstrap

import (
	"context"
	"log"
	"time"

	"chat-agent-be/internal/config"
	"chat-agent-be/internal/controller"
	"chat-agent-be/internal/pkg/logger"
	"chat-agent-be/internal/repository/implementation"
	"chat-agent-be/internal/repository/memory"
	"chat-agent-be/internal/service"
	"chat-agent-be/internal/websocket"
	"chat-agent-be/pkg/agent/aggregate"
	"chat-agent-be/pkg/agent/generate"
	"chat-agent-be/pkg/agent/retrieval"
	"chat-agent-be/pkg/agent/router"
	"chat-agent-be/pkg/agent/tools"
	"chat-agent-be/pkg/agent/turn"
	"chat-agent-be/pkg/agent/verify"
	"chat-agent-be/pkg/checkpoint"
	"chat-agent-be/pkg/embedding"
	"chat-agent-be/pkg/embedding/jina"
	"chat-agent-be/pkg/llm/factory"
	"chat-agent-be/pkg/llm/gemini"
	"chat-agent-be/pkg/messenger"
	"chat-agent-be/pkg/reservation"
	"chat-agent-be/pkg/vectorstore/qdrant"
	"chat-agent-be/pkg/websearch"

	pktNats "chat-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WebhookController controller.IWebhookController
	AuthController    controller.IAuthController
	MonitorController controller.IMonitorController

	// Background Services (Exposed for main.go to run)
	IngressConsumer *service.IngressConsumerService
	TurnConsumer    *service.TurnConsumerService

	// Turn pipeline entry points (exposed for tooling and shutdown)
	Aggregator *aggregate.Aggregator

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Vision always goes through Gemini; image analysis degrades softly when
	// the key is missing or the call fails.
	visionProvider := gemini.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Qdrant preference memory
	memoryStore, err := qdrant.New(qdrant.Config{
		URL:            cfg.Ai.QdrantURL,
		CollectionName: cfg.Ai.MemoryCollection,
		APIKey:         cfg.Keys.QdrantAPIKey,
		VectorSize:     768,
	})
	if err != nil {
		log.Printf("[WARN] Failed to connect to Qdrant: %v. Preference memory disabled", err)
	} else if err := memoryStore.EnsureCollection(context.Background()); err != nil {
		log.Printf("[WARN] Failed to ensure Qdrant collection: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/monitor.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Repositories
	profileRepo := implementation.NewProfileRepository(db)
	chatMessageRepo := implementation.NewChatMessageRepository(db)
	bookingRepo := implementation.NewBookingRepository(db)
	knowledgeRepo := implementation.NewKnowledgeEmbeddingRepository(db)
	operatorRepo := implementation.NewOperatorRepository(db)
	profileCache := memory.NewProfileCache()

	// 4. Services
	profileService := service.NewProfileService(profileRepo, profileCache, memoryStore, embeddingProvider, sysLogger)
	bookingService := service.NewBookingService(
		bookingRepo,
		reservation.NewClient(cfg.Agent.ReservationAPIBase, cfg.Keys.ReservationAPI),
		sysLogger,
	)
	summaryService := service.NewSummaryService(llmProvider, sysLogger)
	historyService := service.NewHistoryService(chatMessageRepo)
	authService := service.NewAuthService(operatorRepo, sysLogger)
	monitorService := service.NewMonitorService(wsHub)

	// 5. Agent pipeline
	retriever := retrieval.NewVectorRetriever(
		embeddingProvider,
		knowledgeRepo,
		cfg.Agent.RetrievalTopK,
		cfg.Agent.RetrievalThreshold,
		sysLogger,
	)

	registry := tools.NewRegistry(sysLogger)
	registry.Register(tools.NewSavePreferenceTool(profileService))
	registry.Register(tools.NewGetUserProfileTool(profileService))
	registry.Register(tools.NewFindBranchTool(retriever))
	registry.Register(tools.NewCreateBookingTool(bookingService, profileService))

	turnController := turn.NewController(turn.Config{
		Checkpoints: checkpoint.NewRedisStore(rdb, 7*24*time.Hour, sysLogger),
		Router:      router.New(nil),
		Retriever:   retriever,
		Grader:      retrieval.NewGrader(llmProvider, sysLogger),
		Rewriter:    retrieval.NewRewriter(llmProvider, nil, sysLogger),
		Generator:   generate.New(llmProvider, registry, profileService, sysLogger),
		Verifier:    verify.New(llmProvider, cfg.Agent.GroundednessThreshold, sysLogger),
		Searcher:    websearch.NewTavilyClient(cfg.Keys.Tavily),
		Replier:     messenger.NewClient(cfg.Messenger.SendAPIBase, cfg.Messenger.PageToken),
		Summarizer:  summaryService,
		Historian:   historyService,
		Observer:    monitorService,
		Bounds: turn.Bounds{
			MaxRewrites:       cfg.Agent.MaxRewrites,
			MaxSearchAttempts: cfg.Agent.MaxSearchAttempts,
			MaxRegenerations:  cfg.Agent.MaxRegenerations,
		},
		SummaryEvery: cfg.Agent.SummaryAfterMessages,
		Logger:       sysLogger,
	})

	aggregator := aggregate.New(
		pubSub,
		visionProvider,
		cfg.Agent.InactivityWindow,
		cfg.Agent.ImageAnalysisTimeout,
		sysLogger,
	)

	ingressService := service.NewIngressService(natsPub, cfg.Messenger.VerifyToken, sysLogger)
	ingressConsumer := service.NewIngressConsumerService(natsSub, aggregator, sysLogger)
	turnConsumer := service.NewTurnConsumerService(pubSub, turnController, sysLogger)

	// 6. Controllers
	return &Container{
		WebhookController: controller.NewWebhookController(ingressService),
		AuthController:    controller.NewAuthController(authService),
		MonitorController: controller.NewMonitorController(wsHub, historyService, monitorService),

		IngressConsumer: ingressConsumer,
		TurnConsumer:    turnConsumer,
		Aggregator:      aggregator,
		WebSocketHub:    wsHub,
	}
}
