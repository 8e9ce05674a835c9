package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidStateError(t *testing.T) {
	evaluation := Evaluation{ID: 42, State: StatePrepared}
	err := NewInvalidStateError("GetResults", evaluation)

	assert.Equal(t, "invalid evaluation state: operation=GetResults, evaluation=42, state=prepared", err.Error())
	assert.True(t, errors.Is(err, ErrInvalidState), "Should unwrap to ErrInvalidState")

	var target *InvalidStateError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, StatePrepared, target.State)
}

func TestCacheMissError(t *testing.T) {
	err := &CacheMissError{Key: "results-3", EvaluationID: 3}

	assert.Equal(t, "results not cached: evaluation=3, key=results-3", err.Error())
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestQuestionTypeError(t *testing.T) {
	q := Question{ID: 9, Type: QuestionTypeText}
	err := NewQuestionTypeError(q, "Choices", ErrNotRatingQuestion)

	assert.Equal(t, "question type error: operation=Choices, question=9, type=0, err=not a rating question", err.Error())
	assert.True(t, errors.Is(err, ErrNotRatingQuestion))
	assert.False(t, errors.Is(err, ErrWrongQuestionType))
}

func TestValidationError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := NewValidationError("answer counters")
		err.AddError("answer 9 not on scale")

		assert.Equal(t, "validation error for answer counters: answer 9 not on scale", err.Error())
		assert.True(t, err.HasErrors(), "Should have errors")
		assert.Len(t, err.Errors, 1, "Should have one error")
	})

	t.Run("multiple errors", func(t *testing.T) {
		err := NewValidationError("answer counters")
		err.AddError("answer 9 not on scale")
		err.AddError("negative count -1")

		assert.Equal(t, "validation errors for answer counters: answer 9 not on scale; negative count -1", err.Error())
		assert.Len(t, err.Errors, 2, "Should have two errors")
	})

	t.Run("no errors", func(t *testing.T) {
		err := NewValidationError("answer counters")
		assert.False(t, err.HasErrors(), "Should not have errors")
	})

	t.Run("unwraps to inconsistent data", func(t *testing.T) {
		err := NewValidationError("answer counters")
		err.AddError("x")
		assert.True(t, errors.Is(err, ErrInconsistentData))
	})
}

func TestCommonDomainErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrInvalidState, "invalid evaluation state"},
		{ErrCacheMiss, "results not cached"},
		{ErrNotRatingQuestion, "not a rating question"},
		{ErrWrongQuestionType, "wrong question type"},
		{ErrInconsistentData, "inconsistent answer data"},
		{ErrInvalidTextAnswerState, "invalid text answer state"},
		{ErrUnknownQuestionKind, "unknown question kind"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}
