package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"studyshelf/internal/ai"
	"studyshelf/internal/app"
	"studyshelf/internal/cache"
	"studyshelf/internal/config"
	"studyshelf/internal/docfetch"
	"studyshelf/internal/github"
	"studyshelf/internal/model"
	"studyshelf/internal/observability"
	"studyshelf/internal/platform/logger"
	mysqlClient "studyshelf/internal/platform/mysql"
	"studyshelf/internal/platform/objectstore"
	rabbitmqClient "studyshelf/internal/platform/rabbitmq"
	redisClient "studyshelf/internal/platform/redis"
	"studyshelf/internal/repository"
	"studyshelf/internal/worker"
)

type App struct {
	Config         *config.Config
	Log            *logger.Logger
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	ExchangeWorker *worker.ExchangePersistWorker
	Objects        objectstore.Store

	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	Collections *app.Collections
	Browser     *app.BrowserService
	Search      *app.SearchService
	Tutor       *app.TutorService
	Resources   *app.ResourceService

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Log:       log,
		StartedAt: time.Now(),
	}
	a.Registry = observability.NewRegistry()
	a.Metrics = observability.NewMetrics(a.Registry)
	a.Collections = app.NewCollections(cfg.Collections)

	mysqlDB, err := OpenMySQL(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.MySQL = mysqlDB

	if cfg.Cache.Backend == "redis" {
		redisCli, err := redisClient.New(ctx, redisClient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Redis = redisCli
	}

	var publisher app.ExchangePublisher
	if cfg.RabbitMQ.URL != "" {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = mqConn

		exchangeRepo := repository.NewTutorExchangeRepository(mysqlDB)
		a.ExchangeWorker = worker.NewExchangePersistWorker(mqConn, exchangeRepo, cfg.RabbitMQ.ExchangePersistQueue, log)
		if err := a.ExchangeWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start exchange worker failed: %w", err)
		}
		publisher = rabbitmqClient.NewExchangePublisher(mqConn, cfg.RabbitMQ.ExchangePersistQueue)
	} else {
		log.Info("rabbitmq disabled, tutor exchanges are not recorded")
	}

	a.Objects = NewObjectStore(ctx, cfg, log)

	fetcher, err := github.NewFetcher(github.Options{
		Token:             cfg.GitHub.Token,
		BaseURL:           cfg.GitHub.BaseURL,
		RawBaseURL:        cfg.GitHub.RawBaseURL,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
		Timeout:           time.Duration(cfg.GitHub.TimeoutSeconds) * time.Second,
		Logger:            log,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	dirStore, treeStore := newSnapshotStores(cfg, a.Redis)
	dirs := cache.NewSnapshots[[]model.ChildDescriptor](dirStore, cfg.DirectoryTTL())
	trees := cache.NewSnapshots[[]model.TreeEntry](treeStore, cfg.TreeTTL())

	a.Browser = app.NewBrowserService(a.Collections, fetcher, dirs, a.Metrics, log)
	a.Search = app.NewSearchService(a.Collections, fetcher, trees, a.Metrics, log)

	contents := cache.NewContentCache(cfg.Cache.ContentEntries, time.Duration(cfg.Cache.ContentTTLSeconds)*time.Second)
	assembler := app.NewAssembler(
		docfetch.New(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second, cfg.LLM.MaxFetchBytes),
		contents,
		app.AssemblerConfig{Multimodal: cfg.LLM.Multimodal, MaxContentChars: cfg.LLM.MaxContentChars},
		log,
	)
	generator := NewGenerator(cfg.LLM)
	if generator == nil {
		log.Warn("llm api key not set, ai routes will report missing credentials")
	}
	a.Tutor = app.NewTutorService(assembler, generator, publisher, a.Metrics, log)

	a.Resources = app.NewResourceService(repository.NewResourceRepository(mysqlDB), a.Objects, log)

	return a, nil
}

// OpenMySQL connects and migrates the catalogue and exchange tables.
func OpenMySQL(ctx context.Context, cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), log)
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.Resource{}, &model.TutorExchange{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return mysqlDB, nil
}

// NewObjectStore returns nil when the store cannot be opened; uploads then
// fail while the rest of the service keeps running.
func NewObjectStore(ctx context.Context, cfg *config.Config, log *logger.Logger) objectstore.Store {
	store, err := objectstore.New(ctx, objectstore.Config{
		Backend:         cfg.Storage.Backend,
		Bucket:          cfg.Storage.Bucket,
		PublicBaseURL:   cfg.Storage.PublicBaseURL,
		CredentialsFile: cfg.Storage.CredentialsFile,
		S3Region:        cfg.Storage.S3Region,
		S3Endpoint:      cfg.Storage.S3Endpoint,
		S3AccessKey:     cfg.Storage.S3AccessKey,
		S3SecretKey:     cfg.Storage.S3SecretKey,
		S3UsePathStyle:  cfg.Storage.S3UsePathStyle,
	})
	if err != nil {
		log.Warn("object store unavailable", "backend", cfg.Storage.Backend, "error", err)
		return nil
	}
	return store
}

// NewGenerator returns nil without an api key.
func NewGenerator(cfg config.LLMConfig) app.Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.Provider == "openai" {
		return ai.NewOpenAICompatibleClient(ai.ChatConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: timeout,
		})
	}
	return ai.NewGeminiClient(ai.GeminiConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: timeout,
	})
}

func newSnapshotStores(cfg *config.Config, redisCli *redis.Client) (cache.Store[[]model.ChildDescriptor], cache.Store[[]model.TreeEntry]) {
	if redisCli != nil {
		return cache.NewRedisStore[[]model.ChildDescriptor](redisCli, cfg.Cache.KeyPrefix+"dir:"),
			cache.NewRedisStore[[]model.TreeEntry](redisCli, cfg.Cache.KeyPrefix+"tree:")
	}
	return cache.NewMemoryStore[[]model.ChildDescriptor](), cache.NewMemoryStore[[]model.TreeEntry]()
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.ExchangeWorker != nil {
		a.ExchangeWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Objects != nil {
		if err := a.Objects.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
