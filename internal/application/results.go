package application

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
)

// DefaultCacheNamespace prefixes results cache keys unless configured otherwise.
const DefaultCacheNamespace = "evalstats.results.get_results"

// IsCacheable reports whether results of an evaluation in state are served
// from the cache. Evaluations still in evaluation are computed live because
// their answer counts may change.
func IsCacheable(state domain.EvaluationState) bool {
	switch state {
	case domain.StateEvaluated, domain.StateReviewed, domain.StatePublished:
		return true
	default:
		return false
	}
}

// ResultService builds evaluation result trees from stored answers and
// keeps them in the results cache.
//
// Cache population is an explicit step: GetResults never fills a missing
// entry for a cacheable evaluation. Whoever changes the state or answers of
// an evaluation calls CacheResults (or InvalidateResults) afterwards. At
// most one writer per evaluation key is assumed.
//
// ResultService is safe for concurrent use if its collaborators are.
type ResultService struct {
	store      ports.Store
	cache      ports.CacheStore
	policy     *TextAnswerPolicy
	thresholds domain.PublishingThresholds

	namespace       string
	expiration      time.Duration
	warmConcurrency int
	warmLimiter     *rate.Limiter

	// live collapses concurrent computations of the same in-evaluation
	// results into one.
	live singleflight.Group

	logger  *zap.Logger
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewResultService creates a ResultService. logger and metrics may be nil.
func NewResultService(
	store ports.Store,
	cache ports.CacheStore,
	cfg CacheConfig,
	thresholds domain.PublishingThresholds,
	logger *zap.Logger,
	metrics ports.MetricsCollector,
) (*ResultService, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cache == nil {
		return nil, errors.New("cache cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultCacheNamespace
	}
	concurrency := cfg.WarmConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if cfg.Expiration > 0 {
		logger.Warn("cached results expire; reads after expiry report cache misses",
			zap.Duration("expiration", cfg.Expiration))
	}
	limit := rate.Inf
	if cfg.WarmRate > 0 {
		limit = rate.Limit(cfg.WarmRate)
	}

	return &ResultService{
		store:           store,
		cache:           cache,
		policy:          NewTextAnswerPolicy(store),
		thresholds:      thresholds,
		namespace:       namespace,
		expiration:      cfg.Expiration,
		warmConcurrency: concurrency,
		warmLimiter:     rate.NewLimiter(limit, concurrency),
		logger:          logger.Named("results"),
		metrics:         metrics,
		tracer:          otel.Tracer("result-service"),
	}, nil
}

// CacheKey returns the results cache key of an evaluation.
func (s *ResultService) CacheKey(e domain.Evaluation) string {
	return fmt.Sprintf("%s-%d", s.namespace, e.ID)
}

// CacheResults computes the results of e and stores them in the cache,
// replacing any previous entry. e must be in a cacheable state.
func (s *ResultService) CacheResults(ctx context.Context, e domain.Evaluation) error {
	ctx, span := s.tracer.Start(ctx, "ResultService.CacheResults", trace.WithAttributes(evaluationAttributes(e)...))
	defer span.End()

	if !IsCacheable(e.State) {
		err := domain.NewInvalidStateError("CacheResults", e)
		span.RecordError(err)
		span.SetStatus(codes.Error, "state not cacheable")
		return err
	}

	result, err := s.computeResults(ctx, e)
	if err != nil {
		span.RecordError(err)
		return err
	}

	data, err := domain.EncodeEvaluationResult(result)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode results of evaluation %d: %w", e.ID, err)
	}

	key := s.CacheKey(e)
	if err := s.cache.Set(ctx, key, data, s.expiration); err != nil {
		s.recordCacheOperation("set", "error")
		span.RecordError(err)
		return ports.NewCacheError(key, "set", err)
	}
	s.recordCacheOperation("set", "ok")

	s.logger.Debug("cached evaluation results",
		zap.Int64("evaluation_id", e.ID),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// GetResults returns the results of e. Evaluations in evaluation are
// computed live; evaluated, reviewed and published evaluations are read
// from the cache. Any other state is an *domain.InvalidStateError, and a
// missing cache entry is a *domain.CacheMissError.
func (s *ResultService) GetResults(ctx context.Context, e domain.Evaluation) (*domain.EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "ResultService.GetResults", trace.WithAttributes(evaluationAttributes(e)...))
	defer span.End()

	if e.State == domain.StateInEvaluation {
		// The flight outlives any single caller; each caller stops waiting
		// when its own context ends.
		flightCtx := context.WithoutCancel(ctx)
		ch := s.live.DoChan(s.CacheKey(e), func() (any, error) {
			s.logger.Debug("computing live results", zap.Int64("evaluation_id", e.ID))
			return s.computeResults(flightCtx, e)
		})
		select {
		case <-ctx.Done():
			err := ctx.Err()
			span.RecordError(err)
			return nil, err
		case res := <-ch:
			span.SetAttributes(attribute.Bool("results.shared", res.Shared))
			if res.Err != nil {
				span.RecordError(res.Err)
				return nil, res.Err
			}
			return res.Val.(*domain.EvaluationResult), nil
		}
	}

	if !IsCacheable(e.State) {
		err := domain.NewInvalidStateError("GetResults", e)
		span.RecordError(err)
		span.SetStatus(codes.Error, "state has no results")
		return nil, err
	}

	key := s.CacheKey(e)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.recordCacheOperation("get", "error")
		span.RecordError(err)
		return nil, ports.NewCacheError(key, "get", err)
	}
	if !ok {
		s.recordCacheOperation("get", "miss")
		err := domain.NewCacheMissError(key, e.ID)
		s.logger.Error("results missing from cache",
			zap.Int64("evaluation_id", e.ID),
			zap.Stringer("state", e.State),
			zap.String("key", key),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache miss")
		return nil, err
	}
	s.recordCacheOperation("get", "hit")

	result, err := domain.DecodeEvaluationResult(data)
	if err != nil {
		span.RecordError(err)
		return nil, ports.NewCacheError(key, "decode", fmt.Errorf("%w: %v", ports.ErrCacheCorrupted, err))
	}
	return result, nil
}

// InvalidateResults removes the cached results of e. Removing an absent
// entry is not an error.
func (s *ResultService) InvalidateResults(ctx context.Context, e domain.Evaluation) error {
	key := s.CacheKey(e)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.recordCacheOperation("delete", "error")
		return ports.NewCacheError(key, "delete", err)
	}
	s.recordCacheOperation("delete", "ok")
	return nil
}

// WarmCache caches the results of every cacheable evaluation in
// evaluations, computing up to the configured number of evaluations in
// parallel. Other evaluations are skipped. It stops at the first error and
// returns the number of evaluations cached, including those written before
// the error.
func (s *ResultService) WarmCache(ctx context.Context, evaluations []domain.Evaluation) (int, error) {
	ctx, span := s.tracer.Start(ctx, "ResultService.WarmCache",
		trace.WithAttributes(attribute.Int("evaluation.count", len(evaluations))))
	defer span.End()

	// Each evaluation has its own key, so writers never overlap.
	seen := make(map[int64]struct{}, len(evaluations))
	pending := make([]domain.Evaluation, 0, len(evaluations))
	for _, e := range evaluations {
		if !IsCacheable(e.State) {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		pending = append(pending, e)
	}

	var cached atomic.Int64
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.warmConcurrency)
	for _, e := range pending {
		e := e
		g.Go(func() error {
			if err := s.warmLimiter.Wait(gctx); err != nil {
				return err
			}
			if err := s.CacheResults(gctx, e); err != nil {
				return fmt.Errorf("evaluation %d: %w", e.ID, err)
			}
			cached.Add(1)
			return nil
		})
	}
	err := g.Wait()
	n := int(cached.Load())
	s.metrics.RecordGauge(ports.MetricWarmedEvaluations, float64(n), nil)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("results cache warm-up aborted", zap.Int("cached", n), zap.Error(err))
		return n, fmt.Errorf("cache warm-up failed: %w", err)
	}

	s.logger.Info("warmed results cache",
		zap.Int("cached", n),
		zap.Int("skipped", len(evaluations)-len(pending)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return n, nil
}

// SingleResultRatingResult builds the rating result of a single-result
// evaluation from the designated single-result question. Such evaluations
// store between one and five answer counter rows; anything else is
// inconsistent data.
func (s *ResultService) SingleResultRatingResult(ctx context.Context, e domain.Evaluation) (*domain.RatingResult, error) {
	if !e.IsSingleResult {
		return nil, fmt.Errorf("%w: evaluation %d", domain.ErrNotSingleResult, e.ID)
	}

	counters, err := s.store.EvaluationAnswerCounters(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer counters of evaluation %d: %w", e.ID, err)
	}
	if len(counters) < 1 || len(counters) > domain.NumGrades {
		return nil, fmt.Errorf("%w: single result evaluation %d has %d answer counters",
			domain.ErrInconsistentData, e.ID, len(counters))
	}

	question, err := s.store.SingleResultQuestion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load single result question: %w", err)
	}
	return domain.NewRatingResult(question, counters, nil)
}

// computeResults builds the result tree of e from the store.
func (s *ResultService) computeResults(ctx context.Context, e domain.Evaluation) (*domain.EvaluationResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordLatency(ports.OperationComputeResults, time.Since(start),
			map[string]string{"state": e.State.String()})
	}()

	contributions, err := s.store.Contributions(ctx, e.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contributions of evaluation %d: %w", e.ID, err)
	}

	b := resultBuilder{
		service:        s,
		canPublishText: e.CanPublishTextResults(s.thresholds),
		canPublishRate: e.CanPublishRatingResults(s.thresholds),
	}

	contributionResults := make([]domain.ContributionResult, 0, len(contributions))
	for _, c := range contributions {
		cr, err := b.contributionResult(ctx, c)
		if err != nil {
			return nil, err
		}
		contributionResults = append(contributionResults, cr)
	}
	return &domain.EvaluationResult{ContributionResults: contributionResults}, nil
}

// resultBuilder carries the per-evaluation publishing decisions while a
// result tree is assembled.
type resultBuilder struct {
	service        *ResultService
	canPublishText bool
	canPublishRate bool
}

func (b *resultBuilder) contributionResult(ctx context.Context, c domain.Contribution) (domain.ContributionResult, error) {
	questionnaires, err := b.service.store.Questionnaires(ctx, c.ID)
	if err != nil {
		return domain.ContributionResult{}, fmt.Errorf("failed to load questionnaires of contribution %d: %w", c.ID, err)
	}

	// The readers are the same for every question of the contribution.
	var visibleTo *domain.TextAnswerVisibilityInfo

	questionnaireResults := make([]domain.QuestionnaireResult, 0, len(questionnaires))
	for _, questionnaire := range questionnaires {
		results := make([]domain.QuestionResult, 0, len(questionnaire.Questions))
		for _, q := range questionnaire.Questions {
			switch q.Kind() {
			case domain.KindHeading:
				results = append(results, &domain.HeadingResult{Question: q})

			case domain.KindText, domain.KindRating:
				var textResult *domain.TextResult
				if q.CanHaveTextAnswers() && b.canPublishText {
					if visibleTo == nil {
						info, err := b.service.policy.VisibleTo(ctx, c)
						if err != nil {
							return domain.ContributionResult{}, err
						}
						visibleTo = &info
					}
					textResult, err = b.textResult(ctx, c, q, *visibleTo)
					if err != nil {
						return domain.ContributionResult{}, err
					}
				}

				if q.Kind() == domain.KindRating {
					ratingResult, err := b.ratingResult(ctx, c, q, textResult)
					if err != nil {
						return domain.ContributionResult{}, err
					}
					results = append(results, ratingResult)
				} else if textResult != nil {
					results = append(results, textResult)
				}

			default:
				return domain.ContributionResult{}, domain.NewQuestionTypeError(q, "ComputeResults", domain.ErrUnknownQuestionKind)
			}
		}
		questionnaireResults = append(questionnaireResults, domain.QuestionnaireResult{
			Questionnaire:   questionnaire,
			QuestionResults: results,
		})
	}

	return domain.ContributionResult{
		Contributor:          c.Contributor,
		Label:                c.Label,
		QuestionnaireResults: questionnaireResults,
	}, nil
}

func (b *resultBuilder) textResult(
	ctx context.Context,
	c domain.Contribution,
	q domain.Question,
	visibleTo domain.TextAnswerVisibilityInfo,
) (*domain.TextResult, error) {
	answers, err := b.service.store.TextAnswers(ctx, c.ID, q.ID, domain.TextAnswerPrivate, domain.TextAnswerPublished)
	if err != nil {
		return nil, fmt.Errorf("failed to load text answers of question %d: %w", q.ID, err)
	}
	if answers == nil {
		answers = []domain.TextAnswer{}
	}
	return domain.NewTextResult(q, answers, visibleTo)
}

func (b *resultBuilder) ratingResult(
	ctx context.Context,
	c domain.Contribution,
	q domain.Question,
	textResult *domain.TextResult,
) (*domain.RatingResult, error) {
	if !b.canPublishRate {
		return domain.NewRatingResult(q, nil, textResult)
	}

	counters, err := b.service.store.AnswerCounters(ctx, c.ID, q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer counters of question %d: %w", q.ID, err)
	}
	if counters == nil {
		// Published without answers: zero counts, not unpublished.
		counters = []domain.AnswerCounter{}
	}
	return domain.NewRatingResult(q, counters, textResult)
}

func (s *ResultService) recordCacheOperation(operation, status string) {
	s.metrics.RecordCounter(ports.MetricCacheOperations, 1, map[string]string{
		"operation": operation,
		"status":    status,
	})
}

func evaluationAttributes(e domain.Evaluation) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("evaluation.id", e.ID),
		attribute.String("evaluation.state", e.State.String()),
		attribute.Bool("evaluation.single_result", e.IsSingleResult),
	}
}

// nopMetrics discards all measurements.
type nopMetrics struct{}

func (nopMetrics) RecordLatency(string, time.Duration, map[string]string) {}
func (nopMetrics) RecordCounter(string, float64, map[string]string)       {}
func (nopMetrics) RecordGauge(string, float64, map[string]string)         {}
func (nopMetrics) RecordHistogram(string, float64, map[string]string)     {}

var _ ports.MetricsCollector = nopMetrics{}
