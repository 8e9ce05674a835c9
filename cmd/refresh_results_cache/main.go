// Command refresh_results_cache recomputes and caches the results of every
// cacheable evaluation of the given courses and logs the course grades.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ahrav/go-evalstats/infrastructure/cache"
	"github.com/ahrav/go-evalstats/infrastructure/logging"
	"github.com/ahrav/go-evalstats/infrastructure/metrics"
	"github.com/ahrav/go-evalstats/infrastructure/store"
	"github.com/ahrav/go-evalstats/internal/application"
	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to a YAML configuration file")
		courseList  = flag.String("courses", "", "Comma-separated IDs of the courses to refresh")
		clearFirst  = flag.Bool("clear", false, "Remove every cached result before refreshing")
		metricsFile = flag.String("metrics-file", "", "Write Prometheus metrics in text format to this file")
	)
	flag.Parse()

	courseIDs, err := parseIDs(*courseList)
	if err != nil {
		log.Fatalf("Invalid -courses: %v", err)
	}
	if len(courseIDs) == 0 {
		log.Fatal("No courses given; pass -courses=1,2,3")
	}

	cfg, err := application.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	if err := run(ctx, cfg, courseIDs, *clearFirst, logger, metrics.NewPrometheusMetrics(registry)); err != nil {
		logger.Error("refresh failed", zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, registry); err != nil {
			logger.Warn("failed to write metrics", zap.String("path", *metricsFile), zap.Error(err))
		}
	}
}

func run(
	ctx context.Context,
	cfg *application.Config,
	courseIDs []int64,
	clearFirst bool,
	logger *zap.Logger,
	collector ports.MetricsCollector,
) error {
	db, err := store.Open(ctx, store.Driver(cfg.Store.Driver), cfg.Store.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	defer db.Close()
	sqlStore := store.NewSQLStore(db)

	resultsCache, closeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	if clearFirst {
		if err := resultsCache.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear results cache: %w", err)
		}
		logger.Info("cleared results cache", zap.String("backend", cfg.Cache.Backend))
	}

	service, err := application.NewResultService(
		sqlStore, resultsCache, cfg.Cache, cfg.Publishing.Thresholds(), logger, collector,
	)
	if err != nil {
		return err
	}
	calculator := application.NewDistributionCalculator(service, cfg.Weights)

	for _, courseID := range courseIDs {
		evaluations, err := sqlStore.CourseEvaluations(ctx, courseID)
		if err != nil {
			return err
		}
		if _, err := service.WarmCache(ctx, evaluations); err != nil {
			return fmt.Errorf("course %d: %w", courseID, err)
		}

		distribution, err := calculator.AverageCourseDistribution(ctx, domain.Course{ID: courseID}, true)
		if err != nil {
			return fmt.Errorf("course %d: %w", courseID, err)
		}
		fields := []zap.Field{zap.Int64("course_id", courseID), zap.Int("evaluations", len(evaluations))}
		if grade := domain.DistributionToGrade(distribution); grade != nil {
			fields = append(fields, zap.Float64("avg_grade", *grade))
		}
		logger.Info("refreshed course", fields...)
	}
	return nil
}

// redisPrefix scopes the keys of the results cache within the Redis database.
const redisPrefix = "evalstats"

// newCache builds the configured cache backend and a function releasing it.
func newCache(ctx context.Context, cfg application.CacheConfig) (ports.CacheStore, func(), error) {
	switch cfg.Backend {
	case application.CacheBackendRedis:
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client, redisPrefix), func() { _ = client.Close() }, nil
	default:
		return cache.NewMemoryCache(), func() {}, nil
	}
}

func parseIDs(list string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("course id %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
