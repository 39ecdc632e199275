package bootstrap

import (
	"context"
	"log"
	"strings"

	"ai-coverletter-be/internal/config"
	"ai-coverletter-be/internal/controller"
	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/internal/repository/contract"
	"ai-coverletter-be/internal/repository/implementation"
	"ai-coverletter-be/internal/repository/memory"
	"ai-coverletter-be/internal/repository/unitofwork"
	"ai-coverletter-be/internal/service"
	"ai-coverletter-be/internal/websocket"
	"ai-coverletter-be/pkg/embedding"
	"ai-coverletter-be/pkg/embedding/jina"
	"ai-coverletter-be/pkg/llm"
	"ai-coverletter-be/pkg/llm/anthropic"
	"ai-coverletter-be/pkg/llm/deepseek"
	"ai-coverletter-be/pkg/llm/gemini"
	"ai-coverletter-be/pkg/llm/mistral"
	"ai-coverletter-be/pkg/llm/openai"
	"ai-coverletter-be/pkg/retrieval"

	pktNats "ai-coverletter-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const embedCorpusTopic = "EMBED_CORPUS_DOCUMENT"

type Container struct {
	// Controllers
	LetterController controller.ILetterController
	CorpusController controller.ICorpusController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	ProgressService service.IProgressService

	// WebSockets
	WebSocketHub *websocket.Hub

	// Exposed for cmd tooling and graceful shutdown
	ModelTable *config.ModelTable
	Logger     logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Infrastructure
	embeddingProvider := newEmbeddingProvider(cfg)

	modelTable, err := config.NewModelTable(cfg.Ai.ModelTablePath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load model table: %v", err)
	}
	go func() {
		if err := modelTable.Watch(sysLogger); err != nil {
			sysLogger.Warn("Bootstrap", "Model table watcher stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	registry := llm.NewRegistry()
	registry.Register(openai.NewProvider(cfg.Keys.OpenAI, "", modelTable, sysLogger))
	registry.Register(anthropic.NewProvider(cfg.Keys.Anthropic, "", modelTable, sysLogger))
	registry.Register(gemini.NewProvider(cfg.Keys.GoogleGemini, "", modelTable, sysLogger))
	registry.Register(mistral.NewProvider(cfg.Keys.Mistral, "", modelTable, sysLogger))
	registry.Register(deepseek.NewProvider(cfg.Keys.DeepSeek, "", modelTable, sysLogger))
	log.Printf("[INFO] Registered AI vendors: %v", registry.Vendors())

	// 4. Session Store
	var sessionStore contract.SessionStore
	if cfg.Session.Backend == "postgres" {
		sessionStore = implementation.NewSessionStoreGorm(db, cfg.Session.TTL)
		log.Printf("[INFO] Using Session Store: POSTGRES (ttl %s)", cfg.Session.TTL)
	} else {
		sessionStore = memory.NewSessionStore(cfg.Session.TTL)
		log.Printf("[INFO] Using Session Store: MEMORY (ttl %s)", cfg.Session.TTL)
	}

	// 5. Infrastructure
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
		rdb = nil
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	publisherService := service.NewPublisherService(natsPub, sysLogger)
	consumerService := service.NewConsumerService(
		pubSub,
		embedCorpusTopic,
		uowFactory,
		embeddingProvider,
	)
	progressService := service.NewProgressService(natsSub, wsHub, wsLogger)

	corpusRepository := implementation.NewCorpusRepository(db)
	engine := retrieval.NewEngine(embeddingProvider, corpusRepository, sysLogger)

	letterService := service.NewLetterService(
		sessionStore,
		registry,
		engine,
		publisherService,
		sysLogger,
		splitVendors(cfg.Ai.DefaultVendors),
	)
	corpusService := service.NewCorpusService(
		corpusRepository,
		engine,
		pubSub,
		embedCorpusTopic,
		publisherService,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		LetterController: controller.NewLetterController(letterService),
		CorpusController: controller.NewCorpusController(corpusService),
		ConsumerService:  consumerService,
		ProgressService:  progressService,
		WebSocketHub:     wsHub,
		ModelTable:       modelTable,
		Logger:           sysLogger,
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.Provider {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
		return jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}
}

func splitVendors(csv string) []string {
	var vendors []string
	for _, v := range strings.Split(csv, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vendors = append(vendors, v)
		}
	}
	return vendors
}
