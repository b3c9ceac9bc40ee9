package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/odds-cache-service/internal/odds-service/cache"
	httpapi "github.com/radieske/odds-cache-service/internal/odds-service/http"
	"github.com/radieske/odds-cache-service/internal/odds-service/invalidation"
	"github.com/radieske/odds-cache-service/internal/odds-service/loader"
	"github.com/radieske/odds-cache-service/internal/odds-service/producer"
	"github.com/radieske/odds-cache-service/internal/odds-service/repo"
	"github.com/radieske/odds-cache-service/internal/odds-service/service"
	sharedcache "github.com/radieske/odds-cache-service/internal/shared/cache"
	"github.com/radieske/odds-cache-service/internal/shared/config"
	"github.com/radieske/odds-cache-service/internal/shared/db"
	"github.com/radieske/odds-cache-service/internal/shared/kafka"
	"github.com/radieske/odds-cache-service/internal/shared/logger"
	"github.com/radieske/odds-cache-service/internal/shared/metrics"
)

func main() {
	// carrega config
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service",
		zap.String("instance", cfg.InstanceID),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.String("cache_codec", cfg.CacheCodec),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	reg := prometheus.DefaultRegisterer
	storeQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odds_store_queries_total",
		Help: "queries sent to postgres by operation",
	}, []string{"op"})
	reg.MustRegister(storeQueries)

	store := repo.NewPostgres(pg)
	store.OnQuery = func(op string) { storeQueries.WithLabelValues(op).Inc() }

	// backend de cache
	var (
		backend     cache.Cache
		redisClient *redis.Client
		local       *cache.LocalCache
	)
	switch cfg.CacheBackend {
	case config.CacheBackendLocal:
		lc := cache.DefaultLocalConfig(cfg.CacheTTL)
		lc.Capacity = cfg.CacheLocalCapacity
		local, err = cache.NewLocalCache(lc)
		if err != nil {
			log.Fatal("invalid local cache config", zap.Error(err))
		}
		backend = local
		log.Info("in-process cache ready", zap.Int("capacity", lc.Capacity))
	default:
		redisClient, err = sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		backend = cache.NewRedisCache(redisClient)
		log.Info("redis connected")
	}

	codec, err := cache.CodecByName(cfg.CacheCodec)
	if err != nil {
		log.Fatal("invalid cache codec", zap.Error(err))
	}
	oddsCache := cache.NewInstrumented(backend, log.Named("cache"), cache.NewMetrics(reg))

	// eventos odds_changed
	var publisher service.Publisher
	if cfg.OddsEventsEnabled {
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsChanged)
		defer writer.Close()
		publisher = producer.NewKafkaPublisher(writer)
		log.Info("kafka writer ready", zap.String("topic", cfg.TopicOddsChanged))
	}

	svc := service.New(store, oddsCache, loader.NewBatchLoader(store, log.Named("loader")), log.Named("service"), service.Config{
		TTL:       cfg.CacheTTL,
		Codec:     codec,
		Publisher: publisher,
		Source:    cfg.InstanceID,
	})

	// cache local precisa ouvir escritas das outras instâncias
	if local != nil && cfg.OddsEventsEnabled {
		reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOddsChanged, cfg.InvalidationGroupID)
		defer reader.Close()

		invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "odds_cache_invalidation_events_total",
			Help: "odds_changed events handled by the invalidation consumer",
		}, []string{"result"})
		reg.MustRegister(invalidations)

		consumer := &invalidation.Consumer{
			Log:        log.Named("invalidation"),
			Reader:     reader,
			Cache:      oddsCache,
			Source:     cfg.InstanceID,
			OnConsumed: func() { invalidations.WithLabelValues("consumed").Inc() },
			OnEvicted:  func() { invalidations.WithLabelValues("evicted").Inc() },
			OnSkipped:  func() { invalidations.WithLabelValues("skipped").Inc() },
			OnError:    func(phase string) { invalidations.WithLabelValues("error_" + phase).Inc() },
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("invalidation consumer stopped", zap.Error(err))
			}
		}()
		log.Info("invalidation consumer started", zap.String("group", cfg.InvalidationGroupID))
	}

	// servidor de métricas e health
	metricsSrv := metrics.NewMetricsServer(cfg.MetricsPort, nil, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})

	api := &httpapi.API{
		Log:         log.Named("http"),
		Service:     svc,
		Middlewares: []func(http.Handler) http.Handler{metrics.NewHTTP(reg, "odds").Middleware},
	}
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	for _, srv := range []*http.Server{metricsSrv, apiSrv} {
		go func(srv *http.Server) {
			log.Info("http server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server failed", zap.String("addr", srv.Addr), zap.Error(err))
				stop()
			}
		}(srv)
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
}
