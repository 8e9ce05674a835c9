package application

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
)

// EvaluationGrade is an evaluation annotated with its grade distribution.
type EvaluationGrade struct {
	Evaluation domain.Evaluation
	// SingleResultRatingResult is set for single-result evaluations only.
	SingleResultRatingResult *domain.RatingResult
	Distribution             *domain.Distribution
	AvgGrade                 *float64
}

// CourseResult holds the aggregated results of a course. It is shared by
// all evaluations of the course returned from one call to
// EvaluationsWithCourseResultAttributes.
type CourseResult struct {
	CourseID int64
	// NotAllEvaluationsArePublished is set when any evaluation of the
	// course is unpublished; Distribution and AvgGrade are nil then.
	NotAllEvaluationsArePublished bool
	Distribution                  *domain.Distribution
	AvgGrade                      *float64
	EvaluationCount               int
	EvaluationWeightSum           float64
}

// EvaluationWithCourseResult pairs an evaluation with its course's results.
type EvaluationWithCourseResult struct {
	Evaluation domain.Evaluation
	Course     *CourseResult
}

// DistributionCalculator aggregates rating results into grade
// distributions for evaluations and courses.
type DistributionCalculator struct {
	results *ResultService
	weights WeightsConfig
}

// NewDistributionCalculator creates a calculator reading evaluation results
// through results and combining them with weights.
func NewDistributionCalculator(results *ResultService, weights WeightsConfig) *DistributionCalculator {
	return &DistributionCalculator{results: results, weights: weights}
}

// AverageDistribution returns the grade distribution of a non-single-result
// evaluation, or nil if its average grade may not be shown.
//
// Question results are grouped by contributor. Each contributor's grade and
// non-grade rating questions are averaged with the contributor weights, and
// the contributors are averaged with their largest answer count as weight.
// That average is combined with the general contribution's grade and
// non-grade rating questions using the top-level weights.
//
// e must be in evaluation or later; earlier states return an
// *domain.InvalidStateError.
func (c *DistributionCalculator) AverageDistribution(ctx context.Context, e domain.Evaluation) (*domain.Distribution, error) {
	ctx, span := c.results.tracer.Start(ctx, "DistributionCalculator.AverageDistribution",
		trace.WithAttributes(evaluationAttributes(e)...))
	defer span.End()

	if e.State < domain.StateInEvaluation {
		err := domain.NewInvalidStateError("AverageDistribution", e)
		span.RecordError(err)
		return nil, err
	}
	if !e.CanStaffSeeAverageGrade() || !e.CanPublishAverageGrade(c.results.thresholds) {
		return nil, nil
	}

	start := time.Now()
	defer func() {
		c.results.metrics.RecordLatency(ports.OperationAverageDistribution, time.Since(start), nil)
	}()

	result, err := c.results.GetResults(ctx, e)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	general, contributors := groupRatingResults(result)

	contributorDistributions := make([]domain.WeightedDistribution, 0, len(contributors))
	for _, results := range contributors {
		contributorDistributions = append(contributorDistributions, domain.WeightedDistribution{
			Distribution: domain.AvgDistribution([]domain.WeightedDistribution{
				{Distribution: gradeQuestionsDistribution(results), Weight: c.weights.ContributorGradeQuestions},
				{Distribution: nonGradeRatingQuestionsDistribution(results), Weight: c.weights.ContributorNonGradeRatingQuestions},
			}),
			Weight: float64(maxCountSum(results)),
		})
	}
	averageContributor := domain.AvgDistribution(contributorDistributions)

	distribution := domain.AvgDistribution([]domain.WeightedDistribution{
		{Distribution: gradeQuestionsDistribution(general), Weight: c.weights.GeneralGradeQuestions},
		{Distribution: nonGradeRatingQuestionsDistribution(general), Weight: c.weights.GeneralNonGradeQuestions},
		{Distribution: averageContributor, Weight: c.weights.Contributions},
	})

	if grade := domain.DistributionToGrade(distribution); grade != nil {
		span.SetAttributes(attribute.Float64("evaluation.avg_grade", *grade))
		c.results.metrics.RecordHistogram(ports.MetricAverageGrade, *grade, nil)
	}
	return distribution, nil
}

// AverageCourseDistribution averages the distributions of all evaluations
// of course, weighted by evaluation weight. With checkForUnpublished set it
// returns nil as soon as any evaluation of the course is unpublished.
func (c *DistributionCalculator) AverageCourseDistribution(
	ctx context.Context,
	course domain.Course,
	checkForUnpublished bool,
) (*domain.Distribution, error) {
	evaluations, err := c.results.store.CourseEvaluations(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluations of course %d: %w", course.ID, err)
	}
	if checkForUnpublished && !allPublished(evaluations) {
		return nil, nil
	}
	return c.courseDistribution(ctx, evaluations)
}

// AnnotateDistributionsAndGrades computes the distribution and average
// grade of every evaluation. Single-result evaluations use their normalized
// counts directly.
func (c *DistributionCalculator) AnnotateDistributionsAndGrades(
	ctx context.Context,
	evaluations []domain.Evaluation,
) ([]EvaluationGrade, error) {
	annotated := make([]EvaluationGrade, 0, len(evaluations))
	for _, e := range evaluations {
		grade := EvaluationGrade{Evaluation: e}
		if e.IsSingleResult {
			rr, err := c.results.SingleResultRatingResult(ctx, e)
			if err != nil {
				return nil, err
			}
			distribution, err := domain.CountsDistribution(rr.Counts)
			if err != nil {
				return nil, err
			}
			grade.SingleResultRatingResult = rr
			grade.Distribution = distribution
		} else {
			distribution, err := c.AverageDistribution(ctx, e)
			if err != nil {
				return nil, err
			}
			grade.Distribution = distribution
		}
		grade.AvgGrade = domain.DistributionToGrade(grade.Distribution)
		annotated = append(annotated, grade)
	}
	return annotated, nil
}

// EvaluationsWithCourseResultAttributes attaches the aggregated results of
// each evaluation's course. Every distinct course is computed once and its
// CourseResult is shared between its evaluations. Courses with an
// unpublished evaluation get no distribution.
func (c *DistributionCalculator) EvaluationsWithCourseResultAttributes(
	ctx context.Context,
	evaluations []domain.Evaluation,
) ([]EvaluationWithCourseResult, error) {
	courses := make(map[int64]*CourseResult)
	out := make([]EvaluationWithCourseResult, 0, len(evaluations))

	for _, e := range evaluations {
		course, ok := courses[e.CourseID]
		if !ok {
			var err error
			course, err = c.courseResult(ctx, e.CourseID)
			if err != nil {
				return nil, err
			}
			courses[e.CourseID] = course
		}
		out = append(out, EvaluationWithCourseResult{Evaluation: e, Course: course})
	}

	c.results.logger.Debug("attached course results",
		zap.Int("evaluations", len(evaluations)),
		zap.Int("courses", len(courses)),
	)
	return out, nil
}

func (c *DistributionCalculator) courseResult(ctx context.Context, courseID int64) (*CourseResult, error) {
	siblings, err := c.results.store.CourseEvaluations(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluations of course %d: %w", courseID, err)
	}

	result := &CourseResult{CourseID: courseID, EvaluationCount: len(siblings)}
	for _, e := range siblings {
		result.EvaluationWeightSum += e.Weight
	}

	if !allPublished(siblings) {
		result.NotAllEvaluationsArePublished = true
		return result, nil
	}

	result.Distribution, err = c.courseDistribution(ctx, siblings)
	if err != nil {
		return nil, err
	}
	result.AvgGrade = domain.DistributionToGrade(result.Distribution)
	return result, nil
}

func (c *DistributionCalculator) courseDistribution(
	ctx context.Context,
	evaluations []domain.Evaluation,
) (*domain.Distribution, error) {
	weighted := make([]domain.WeightedDistribution, 0, len(evaluations))
	for _, e := range evaluations {
		var distribution *domain.Distribution
		if e.IsSingleResult {
			rr, err := c.results.SingleResultRatingResult(ctx, e)
			if err != nil {
				return nil, err
			}
			if distribution, err = domain.CountsDistribution(rr.Counts); err != nil {
				return nil, err
			}
		} else {
			var err error
			if distribution, err = c.AverageDistribution(ctx, e); err != nil {
				return nil, err
			}
		}
		weighted = append(weighted, domain.WeightedDistribution{Distribution: distribution, Weight: e.Weight})
	}
	return domain.AvgDistribution(weighted), nil
}

// groupRatingResults splits the rating results of an evaluation into those
// of the general contribution and those of each contributor, in order of
// first appearance. A contributor with several contributions is one group.
func groupRatingResults(result *domain.EvaluationResult) (general []*domain.RatingResult, contributors [][]*domain.RatingResult) {
	index := make(map[int64]int)
	for _, cr := range result.ContributionResults {
		var group *[]*domain.RatingResult
		if cr.IsGeneral() {
			group = &general
		} else {
			i, ok := index[cr.Contributor.ID]
			if !ok {
				i = len(contributors)
				index[cr.Contributor.ID] = i
				contributors = append(contributors, nil)
			}
			group = &contributors[i]
		}

		for _, qr := range cr.QuestionnaireResults {
			for _, r := range qr.QuestionResults {
				if rr, ok := r.(*domain.RatingResult); ok {
					*group = append(*group, rr)
				}
			}
		}
	}
	return general, contributors
}

func gradeQuestionsDistribution(results []*domain.RatingResult) *domain.Distribution {
	return questionsDistribution(results, domain.Question.IsGradeQuestion)
}

func nonGradeRatingQuestionsDistribution(results []*domain.RatingResult) *domain.Distribution {
	return questionsDistribution(results, domain.Question.IsNonGradeRatingQuestion)
}

// questionsDistribution averages the unipolarized distributions of the
// results whose question matches, weighted by their answer counts.
func questionsDistribution(results []*domain.RatingResult, match func(domain.Question) bool) *domain.Distribution {
	weighted := make([]domain.WeightedDistribution, 0, len(results))
	for _, r := range results {
		if !match(r.Question) {
			continue
		}
		sum, _ := r.CountSum()
		weighted = append(weighted, domain.WeightedDistribution{
			Distribution: domain.UnipolarizedDistribution(r),
			Weight:       float64(sum),
		})
	}
	return domain.AvgDistribution(weighted)
}

// maxCountSum returns the largest answer count of any published result, or 0.
func maxCountSum(results []*domain.RatingResult) int {
	maxSum := 0
	for _, r := range results {
		if sum, ok := r.CountSum(); ok && sum > maxSum {
			maxSum = sum
		}
	}
	return maxSum
}

func allPublished(evaluations []domain.Evaluation) bool {
	for _, e := range evaluations {
		if !e.IsPublished() {
			return false
		}
	}
	return true
}
