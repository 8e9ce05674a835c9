package ports

import (
	"context"

	"github.com/ahrav/go-evalstats/internal/domain"
)

// Store defines read-only queries over the persisted evaluation data.
// Implementations may be backed by a relational database or by in-memory
// fixtures; the results core performs no writes through it.
//
// Slices returned by a Store are owned by the caller.
type Store interface {
	// Contributions returns all contributions of the evaluation, the general
	// contribution included, in a stable order.
	Contributions(ctx context.Context, evaluationID int64) ([]domain.Contribution, error)

	// Questionnaires returns the questionnaires of a contribution with their
	// questions in display order.
	Questionnaires(ctx context.Context, contributionID int64) ([]domain.Questionnaire, error)

	// AnswerCounters returns the rating answer counts of one question within
	// one contribution.
	AnswerCounters(ctx context.Context, contributionID, questionID int64) ([]domain.AnswerCounter, error)

	// EvaluationAnswerCounters returns all rating answer counts of an
	// evaluation across its contributions.
	EvaluationAnswerCounters(ctx context.Context, evaluationID int64) ([]domain.AnswerCounter, error)

	// TextAnswers returns the text answers of one question within one
	// contribution whose state is one of states.
	TextAnswers(
		ctx context.Context,
		contributionID, questionID int64,
		states ...domain.TextAnswerState,
	) ([]domain.TextAnswer, error)

	// SingleResultQuestion returns the sole rating question of the system
	// questionnaire used by single-result evaluations.
	SingleResultQuestion(ctx context.Context) (domain.Question, error)

	// CourseEvaluations returns all evaluations of a course.
	CourseEvaluations(ctx context.Context, courseID int64) ([]domain.Evaluation, error)

	// GeneralTextAnswerContributors returns the contributors of the
	// evaluation whose contribution grants VisibilityGeneralTextAnswers.
	GeneralTextAnswerContributors(ctx context.Context, evaluationID int64) ([]domain.User, error)

	// CourseResponsibles returns the users responsible for a course.
	CourseResponsibles(ctx context.Context, courseID int64) ([]domain.User, error)

	// DelegatesOf returns the distinct users that represent at least one of
	// the given users.
	DelegatesOf(ctx context.Context, userIDs []int64) ([]domain.User, error)
}
