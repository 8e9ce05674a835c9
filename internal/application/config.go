package application

import (
	"time"

	"github.com/ahrav/go-evalstats/internal/domain"
)

// Config is the complete runtime configuration of the results core and its
// adapters. It is loaded from YAML and environment variables by
// ParseConfig or LoadConfig and validated before use.
type Config struct {
	// Weights controls how question results are combined into an
	// evaluation's average distribution.
	Weights WeightsConfig `yaml:"weights" mapstructure:"weights"`
	// Publishing holds the voter thresholds that decide which results
	// may be shown.
	Publishing PublishingConfig `yaml:"publishing" mapstructure:"publishing"`
	// Cache configures the results cache.
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Store configures the database holding answers and evaluations.
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// WeightsConfig holds the relative weights used by DistributionCalculator.
// Weights are relative; they do not need to add up to one.
type WeightsConfig struct {
	// ContributorGradeQuestions weights a contributor's grade questions
	// against their other rating questions.
	ContributorGradeQuestions float64 `yaml:"contributor_grade_questions" mapstructure:"contributor_grade_questions" validate:"min=0"`
	// ContributorNonGradeRatingQuestions weights a contributor's non-grade
	// rating questions against their grade questions.
	ContributorNonGradeRatingQuestions float64 `yaml:"contributor_non_grade_rating_questions" mapstructure:"contributor_non_grade_rating_questions" validate:"min=0"`
	// GeneralGradeQuestions is the weight of the general contribution's
	// grade questions in the evaluation average.
	GeneralGradeQuestions float64 `yaml:"general_grade_questions" mapstructure:"general_grade_questions" validate:"min=0"`
	// GeneralNonGradeQuestions is the weight of the general contribution's
	// non-grade rating questions in the evaluation average.
	GeneralNonGradeQuestions float64 `yaml:"general_non_grade_questions" mapstructure:"general_non_grade_questions" validate:"min=0"`
	// Contributions is the weight of the averaged contributor distribution
	// in the evaluation average.
	Contributions float64 `yaml:"contributions" mapstructure:"contributions" validate:"min=0"`
}

// PublishingConfig mirrors domain.PublishingThresholds for configuration files.
type PublishingConfig struct {
	VoterCountForRatingResults     int     `yaml:"voter_count_for_rating_results" mapstructure:"voter_count_for_rating_results" validate:"min=0"`
	VoterCountForTextResults       int     `yaml:"voter_count_for_text_results" mapstructure:"voter_count_for_text_results" validate:"min=0"`
	VoterPercentageForAverageGrade float64 `yaml:"voter_percentage_for_average_grade" mapstructure:"voter_percentage_for_average_grade" validate:"min=0,max=1"`
}

// Thresholds converts the configuration into domain thresholds.
func (c PublishingConfig) Thresholds() domain.PublishingThresholds {
	return domain.PublishingThresholds{
		VoterCountForRatingResults:     c.VoterCountForRatingResults,
		VoterCountForTextResults:       c.VoterCountForTextResults,
		VoterPercentageForAverageGrade: c.VoterPercentageForAverageGrade,
	}
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig configures where computed results are cached.
type CacheConfig struct {
	// Namespace prefixes every results cache key.
	Namespace string `yaml:"namespace" mapstructure:"namespace" validate:"required,max=200"`
	// Backend selects the cache implementation.
	Backend string `yaml:"backend" mapstructure:"backend" validate:"required,oneof=memory redis"`
	// Expiration is the lifetime of cached results. Zero keeps them until
	// they are invalidated. GetResults never refills an entry, so once a
	// cached evaluation expires its reads fail with a cache miss until
	// CacheResults or WarmCache runs again; set it only when something
	// refreshes the cache periodically.
	Expiration time.Duration `yaml:"expiration" mapstructure:"expiration" validate:"min=0"`
	// WarmConcurrency bounds the number of evaluations computed in
	// parallel while warming the cache.
	WarmConcurrency int `yaml:"warm_concurrency" mapstructure:"warm_concurrency" validate:"min=1,max=64"`
	// WarmRate caps the number of evaluations computed per second while
	// warming the cache, to spare the database. Zero disables the cap.
	WarmRate float64 `yaml:"warm_rate" mapstructure:"warm_rate" validate:"min=0"`
	// Redis is required when Backend is "redis".
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig holds the connection settings of the Redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db" validate:"min=0,max=15"`
}

// StoreConfig selects the database driver and connection string.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// File enables JSON logging into a rotated file in addition to the console.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns the configuration used for values absent from
// configuration files and the environment.
func DefaultConfig() Config {
	return Config{
		Weights: WeightsConfig{
			ContributorGradeQuestions:          4,
			ContributorNonGradeRatingQuestions: 6,
			GeneralGradeQuestions:              1,
			GeneralNonGradeQuestions:           1,
			Contributions:                      1,
		},
		Publishing: PublishingConfig{
			VoterCountForRatingResults:     2,
			VoterCountForTextResults:       2,
			VoterPercentageForAverageGrade: 0.2,
		},
		Cache: CacheConfig{
			Namespace:       DefaultCacheNamespace,
			Backend:         CacheBackendMemory,
			WarmConcurrency: 4,
			Redis:           RedisConfig{Addr: "localhost:6379"},
		},
		Store: StoreConfig{
			Driver: "sqlite",
			DSN:    "file:evalstats.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
