package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/nitishkumarnitc/HealthBot/internal/config"
	"github.com/nitishkumarnitc/HealthBot/internal/controller"
	"github.com/nitishkumarnitc/HealthBot/internal/pkg/logger"
	"github.com/nitishkumarnitc/HealthBot/internal/service"
	"github.com/nitishkumarnitc/HealthBot/pkg/llm/factory"
	"github.com/nitishkumarnitc/HealthBot/pkg/retry"
	"github.com/nitishkumarnitc/HealthBot/pkg/search/tavily"
	"github.com/nitishkumarnitc/HealthBot/pkg/store"
	"github.com/nitishkumarnitc/HealthBot/pkg/suggest"

	pktNats "github.com/nitishkumarnitc/HealthBot/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// stageTopic is the in-process pub/sub topic carrying per-stage telemetry.
const stageTopic = "healthbot.stage"

type Container struct {
	// Controllers
	HealthBotController controller.IHealthBotController
	SuggestController   controller.ISuggestController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS is optional; without a URL events stay in-process only.
	var natsPub service.EventPublisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
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

	// 3. Session Store
	ttl := time.Duration(cfg.Session.TTLSeconds) * time.Second
	var sessions store.ISessionStore
	if cfg.Session.Store == "memory" {
		sessions = store.NewMemorySessionStore(ttl)
		log.Printf("[INFO] Using Session Store: MEMORY (ttl %s)", ttl)
	} else {
		sessions = store.NewRedisSessionStore(rdb, ttl)
		log.Printf("[INFO] Using Session Store: REDIS (ttl %s)", ttl)
	}

	// 4. Providers
	searcher := tavily.New(
		cfg.Search.TavilyAPIKey,
		cfg.Search.TavilyBaseURL,
		cfg.Search.MaxResults,
		cfg.Search.Mock,
	)
	if cfg.Search.Mock {
		log.Printf("[INFO] Using Search Provider: TAVILY (mock mode)")
	} else {
		log.Printf("[INFO] Using Search Provider: TAVILY")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Services
	var validator service.ITopicValidationService
	if cfg.Ai.ValidateTopic {
		validator = service.NewTopicValidationService(llmProvider, sysLogger)
	}

	tlmLogger := logger.NewIsolatedLogger("logs/telemetry.log")
	publisherService := service.NewPublisherService(stageTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, stageTopic, rdb, tlmLogger)

	workflowService := service.NewWorkflowService(
		sessions,
		searcher,
		llmProvider,
		validator,
		publisherService,
		natsPub,
		sysLogger,
		retry.DefaultConfig(),
	)

	// 6. Topic Suggestions
	catalog, err := suggest.LoadCatalog(cfg.App.TopicDataPath)
	if err != nil {
		log.Printf("[WARN] Failed to load topic catalog from %s: %v. Suggestions disabled", cfg.App.TopicDataPath, err)
		catalog = suggest.NewCatalog(nil)
	}
	ranker := suggest.NewRanker(catalog)

	// 7. Controllers
	return &Container{
		HealthBotController: controller.NewHealthBotController(workflowService),
		SuggestController:   controller.NewSuggestController(ranker),

		ConsumerService: consumerService,
	}
}
