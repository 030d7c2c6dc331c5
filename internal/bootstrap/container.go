package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"

	"smart-search-be/internal/config"
	"smart-search-be/internal/controller"
	"smart-search-be/internal/handler"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/pkg/metrics"
	"smart-search-be/internal/pkg/serverutils"
	"smart-search-be/internal/repository/contract"
	"smart-search-be/internal/repository/memory"
	"smart-search-be/internal/repository/redisstate"
	"smart-search-be/internal/repository/unitofwork"
	"smart-search-be/internal/service"
	"smart-search-be/internal/tools"
	"smart-search-be/internal/websocket"
	"smart-search-be/pkg/database"
	"smart-search-be/pkg/events"
	"smart-search-be/pkg/keylock"
	"smart-search-be/pkg/llm/factory"
	pktNats "smart-search-be/pkg/nats"
	"smart-search-be/pkg/rewrite"
	"smart-search-be/pkg/scrape"
	"smart-search-be/pkg/summarize"
	"smart-search-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

type Container struct {
	Logger  *logger.ZapLogger
	Metrics *metrics.Metrics

	// Services
	SmartSearchService service.ISmartSearchService
	ContextService     service.IContextService
	Registry           *tools.Registry

	// Controllers
	SearchController controller.ISearchController
	McpController    controller.IMcpController
	LiveHandler      *handler.LiveHandler

	// Background Services (started by Start)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	closers []func()
}

type options struct {
	console zapcore.WriteSyncer
}

type Option func(*options)

// WithLogConsole sends console logs to w instead of stdout.
func WithLogConsole(w zapcore.WriteSyncer) Option {
	return func(o *options) { o.console = w }
}

// NewContainer wires every dependency. db may be nil, in which case the turn
// and audit log tables are skipped and history is served from live state.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, opts ...Option) (*Container, error) {
	o := options{console: zapcore.Lock(os.Stdout)}
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Core Facades
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}
	sysLogger := logger.NewZapLoggerTo(cfg.App.LogFilePath, cfg.App.IsProduction(), o.console)
	m := metrics.New()
	locks := keylock.New()

	c := &Container{Logger: sysLogger, Metrics: m}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; without it domain events are simply not announced.
	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// Redis
	var rdb redis.UniversalClient
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		client := redis.NewClient(opt)
		if _, err := client.Ping(ctx).Result(); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		rdb = client
		c.closers = append(c.closers, func() { _ = client.Close() })
	}

	// 3. Session state
	var state contract.SearchStateRepository
	switch {
	case cfg.Search.StateStore == "redis" && rdb != nil:
		state = redisstate.NewStateRepository(rdb, cfg.Search.StateTTL, sysLogger)
	default:
		if cfg.Search.StateStore == "redis" {
			sysLogger.Warn("Bootstrap", "STATE_STORE=redis without REDIS_URL, using memory", nil)
		}
		state = memory.NewStateRepository(cfg.Search.StateTTL)
	}

	// 4. External capabilities
	llmProvider, err := factory.NewLLMProvider(ctx, factory.Config{
		Provider:       cfg.Ai.LLMProvider,
		Model:          cfg.Ai.LLMModel,
		OllamaBaseURL:  cfg.Ai.OllamaBaseURL,
		GeminiAPIKey:   cfg.Keys.GoogleGemini,
		AnthropicKey:   cfg.Keys.Anthropic,
		HuggingFaceKey: cfg.Keys.HuggingFace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	fetcher := scrape.NewFetcher(scrape.Config{
		Timeout:       cfg.Scrape.Timeout,
		MaxChars:      cfg.Scrape.MaxChars,
		RatePerSecond: cfg.Scrape.RatePerSecond,
		Mode:          cfg.Scrape.Mode,
	})

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/live.log")
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 5. Services
	audit := service.NewAuditLogger(sysLogger, uowFactory)
	c.SmartSearchService = service.NewSmartSearchService(
		service.SmartSearchConfig{
			SummaryMaxWords:  cfg.Search.SummaryMaxWords,
			MaxRetainedTurns: cfg.Search.MaxRetainedTurns,
		},
		service.SmartSearchDeps{
			State:      state,
			Rewriter:   rewrite.NewRewriter(llmProvider),
			Searcher:   websearch.NewTavily(cfg.Keys.Tavily),
			Fetcher:    fetcher,
			Summarizer: summarize.NewSummarizer(llmProvider),
			Audit:      audit,
			Locks:      locks,
			Turns:      service.NewPublisherService(cfg.Search.TurnTopic, pubSub),
			Events:     eventPublisher,
			Observer:   c.WebSocketHub,
			Metrics:    m,
		},
	)
	c.ContextService = service.NewContextService(state, locks, uowFactory, sysLogger, eventPublisher, sysLogger)
	c.ConsumerService = service.NewTurnConsumerService(pubSub, cfg.Search.TurnTopic, uowFactory, eventPublisher, sysLogger)
	c.Registry = tools.NewRegistry(c.SmartSearchService, c.ContextService)

	// 6. Controllers
	auth := serverutils.JwtMiddleware(cfg.Auth.JWTSecret)
	c.SearchController = controller.NewSearchController(c.SmartSearchService, c.ContextService, auth)
	c.McpController = controller.NewMcpController(c.Registry, auth)
	c.LiveHandler = handler.NewLiveHandler(c.WebSocketHub, cfg.Auth.JWTSecret, wsLogger)

	return c, nil
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)

	// Subscribe before the first run can publish a turn.
	c.Logger.Info("Bootstrap", "Starting turn consumer", nil)
	if err := c.ConsumerService.Consume(ctx); err != nil {
		c.Logger.Error("Bootstrap", "Turn consumer failed to start", map[string]interface{}{"error": err.Error()})
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// OpenDatabase connects when DB_CONNECTION_STRING is set and returns nil
// otherwise.
func OpenDatabase(cfg *config.Config, opts ...database.Option) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, nil
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return db, nil
}
