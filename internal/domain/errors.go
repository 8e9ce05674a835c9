package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors. All of them signal programming or data-integrity
// defects; expected conditions such as missing answers are reported as nil
// values instead.
var (
	// ErrInvalidState indicates that an evaluation is in a lifecycle state
	// the requested operation does not support.
	ErrInvalidState = errors.New("invalid evaluation state")

	// ErrCacheMiss indicates that results expected in the cache were never
	// stored, which points to a missed invalidation upstream.
	ErrCacheMiss = errors.New("results not cached")

	// ErrNotRatingQuestion indicates that a rating operation received a
	// heading or text question.
	ErrNotRatingQuestion = errors.New("not a rating question")

	// ErrWrongQuestionType indicates that a statistic was requested for a
	// question whose scale does not define it.
	ErrWrongQuestionType = errors.New("wrong question type")

	// ErrInconsistentData indicates that stored answer data violates a
	// structural invariant.
	ErrInconsistentData = errors.New("inconsistent answer data")

	// ErrInvalidTextAnswerState indicates that a text answer in a state
	// other than private or published reached the visibility policy.
	ErrInvalidTextAnswerState = errors.New("invalid text answer state")

	// ErrNotSingleResult indicates that a single-result operation received
	// an evaluation with a questionnaire structure.
	ErrNotSingleResult = errors.New("not a single result evaluation")

	// ErrUnknownQuestionKind indicates a question type without a result variant.
	ErrUnknownQuestionKind = errors.New("unknown question kind")
)

// InvalidStateError reports which operation rejected an evaluation and in
// which state the evaluation was.
type InvalidStateError struct {
	// Operation is the name of the rejected operation.
	Operation string

	// EvaluationID identifies the evaluation.
	EvaluationID int64

	// State is the state the evaluation was in.
	State EvaluationState
}

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid evaluation state: operation=%s, evaluation=%d, state=%s",
		e.Operation, e.EvaluationID, e.State)
}

// Unwrap returns ErrInvalidState.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NewInvalidStateError creates an InvalidStateError for the evaluation.
func NewInvalidStateError(operation string, evaluation Evaluation) *InvalidStateError {
	return &InvalidStateError{
		Operation:    operation,
		EvaluationID: evaluation.ID,
		State:        evaluation.State,
	}
}

// CacheMissError reports the cache key that was expected to hold results.
type CacheMissError struct {
	Key          string
	EvaluationID int64
}

// Error implements the error interface for CacheMissError.
func (e *CacheMissError) Error() string {
	return fmt.Sprintf("results not cached: evaluation=%d, key=%s", e.EvaluationID, e.Key)
}

// Unwrap returns ErrCacheMiss.
func (e *CacheMissError) Unwrap() error { return ErrCacheMiss }

// NewCacheMissError creates a CacheMissError for the evaluation's key.
func NewCacheMissError(key string, evaluationID int64) *CacheMissError {
	return &CacheMissError{Key: key, EvaluationID: evaluationID}
}

// QuestionTypeError represents an operation applied to a question of the
// wrong type.
type QuestionTypeError struct {
	// QuestionID identifies the offending question.
	QuestionID int64

	// Type is the type of the offending question.
	Type QuestionType

	// Operation describes what was being computed.
	Operation string

	// Err is ErrNotRatingQuestion or ErrWrongQuestionType.
	Err error
}

// Error implements the error interface for QuestionTypeError.
func (e *QuestionTypeError) Error() string {
	return fmt.Sprintf("question type error: operation=%s, question=%d, type=%d, err=%v",
		e.Operation, e.QuestionID, int(e.Type), e.Err)
}

// Unwrap returns the underlying error.
func (e *QuestionTypeError) Unwrap() error { return e.Err }

// NewQuestionTypeError creates a QuestionTypeError for the question.
func NewQuestionTypeError(q Question, operation string, err error) *QuestionTypeError {
	return &QuestionTypeError{
		QuestionID: q.ID,
		Type:       q.Type,
		Operation:  operation,
		Err:        err,
	}
}

// ValidationError represents stored records that failed validation.
// It can contain multiple validation failures.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %s", e.Entity, strings.Join(e.Errors, "; "))
}

// Unwrap returns ErrInconsistentData.
func (e *ValidationError) Unwrap() error { return ErrInconsistentData }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{
		Entity: entity,
		Errors: make([]string, 0),
	}
}
