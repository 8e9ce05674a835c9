package application

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-evalstats/internal/ports"
)

// EnvPrefix prefixes every environment variable read by LoadConfig, e.g.
// EVALSTATS_CACHE_BACKEND overrides cache.backend.
const EnvPrefix = "EVALSTATS"

// ParseConfig decodes a YAML configuration over DefaultConfig and validates
// the result. Unknown fields are rejected so typos do not silently fall
// back to defaults. An empty document yields the defaults.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads the configuration file at path, if any, applies
// EVALSTATS_* environment overrides on top, and validates the result.
// An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		cleanPath := filepath.Clean(path)
		if _, err := os.Stat(cleanPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, ports.NewConfigError(cleanPath, ports.ErrConfigNotFound)
			}
			return nil, ports.NewConfigError(cleanPath, err)
		}
		v.SetConfigFile(cleanPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, ports.NewConfigError(cleanPath, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every configuration key with viper. Keys unknown
// to viper are not looked up in the environment, so each field needs a
// default even when it is the zero value.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("weights.contributor_grade_questions", d.Weights.ContributorGradeQuestions)
	v.SetDefault("weights.contributor_non_grade_rating_questions", d.Weights.ContributorNonGradeRatingQuestions)
	v.SetDefault("weights.general_grade_questions", d.Weights.GeneralGradeQuestions)
	v.SetDefault("weights.general_non_grade_questions", d.Weights.GeneralNonGradeQuestions)
	v.SetDefault("weights.contributions", d.Weights.Contributions)

	v.SetDefault("publishing.voter_count_for_rating_results", d.Publishing.VoterCountForRatingResults)
	v.SetDefault("publishing.voter_count_for_text_results", d.Publishing.VoterCountForTextResults)
	v.SetDefault("publishing.voter_percentage_for_average_grade", d.Publishing.VoterPercentageForAverageGrade)

	v.SetDefault("cache.namespace", d.Cache.Namespace)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.expiration", d.Cache.Expiration)
	v.SetDefault("cache.warm_concurrency", d.Cache.WarmConcurrency)
	v.SetDefault("cache.warm_rate", d.Cache.WarmRate)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateWeights, WeightsConfig{})
	v.RegisterStructValidation(validateCache, CacheConfig{})
	return v
}

// ValidateConfig checks field constraints and the cross-field rules of a
// configuration.
func ValidateConfig(cfg *Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// validateWeights requires at least one positive top-level weight; with all
// three at zero every evaluation average would be undefined.
func validateWeights(sl validator.StructLevel) {
	w := sl.Current().Interface().(WeightsConfig)
	if w.GeneralGradeQuestions+w.GeneralNonGradeQuestions+w.Contributions <= 0 {
		sl.ReportError(w.Contributions, "Contributions", "contributions", "top_level_weight", "")
	}
}

func validateCache(sl validator.StructLevel) {
	c := sl.Current().Interface().(CacheConfig)
	if c.Backend == CacheBackendRedis && c.Redis.Addr == "" {
		sl.ReportError(c.Redis.Addr, "Addr", "addr", "required_for_redis", "")
	}
}
