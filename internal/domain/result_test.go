package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counters(questionID int64, pairs ...int) []AnswerCounter {
	out := make([]AnswerCounter, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, AnswerCounter{QuestionID: questionID, Answer: pairs[i], Count: pairs[i+1]})
	}
	return out
}

func TestNewRatingResult(t *testing.T) {
	likert := Question{ID: 1, Type: QuestionTypePositiveLikert}

	t.Run("tallies counters in scale order", func(t *testing.T) {
		r, err := NewRatingResult(likert, counters(1, 5, 2, 1, 4, 3, 1), nil)
		require.NoError(t, err)
		assert.Equal(t, []int{4, 0, 1, 0, 2}, r.Counts)
		assert.True(t, r.IsPublished())
	})

	t.Run("no answer counters are skipped", func(t *testing.T) {
		r, err := NewRatingResult(likert, counters(1, 2, 3, NoAnswer, 10), nil)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 3, 0, 0, 0}, r.Counts)
	})

	t.Run("empty counters are published zeros", func(t *testing.T) {
		r, err := NewRatingResult(likert, []AnswerCounter{}, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 0, 0, 0, 0}, r.Counts)
		assert.False(t, r.HasAnswers())
	})

	t.Run("nil counters are unpublished", func(t *testing.T) {
		r, err := NewRatingResult(likert, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, r.Counts)
		assert.False(t, r.IsPublished())
		_, ok := r.CountSum()
		assert.False(t, ok)
		assert.Nil(t, r.Average())
	})

	t.Run("values outside the scale are rejected", func(t *testing.T) {
		_, err := NewRatingResult(likert, counters(1, 9, 1), nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.ErrorIs(t, err, ErrInconsistentData)
	})

	t.Run("text question is rejected", func(t *testing.T) {
		_, err := NewRatingResult(Question{ID: 2, Type: QuestionTypeText}, nil, nil)
		assert.ErrorIs(t, err, ErrNotRatingQuestion)
	})
}

func TestRatingResult_Statistics(t *testing.T) {
	t.Run("count sum and average", func(t *testing.T) {
		r := &RatingResult{Question: Question{Type: QuestionTypeGrade}, Counts: []int{1, 1, 0, 0, 2}}
		sum, ok := r.CountSum()
		require.True(t, ok)
		assert.Equal(t, 4, sum)

		avg := r.Average()
		require.NotNil(t, avg)
		assert.InDelta(t, 3.25, *avg, epsilon)
	})

	t.Run("minus balance count", func(t *testing.T) {
		r := &RatingResult{Question: Question{Type: QuestionTypeEasyDifficult}, Counts: []int{0, 0, 0, 2, 0, 0, 4}}
		balance, ok, err := r.MinusBalanceCount()
		require.NoError(t, err)
		require.True(t, ok)
		// portion left = 0 + 2/2 = 1; (6 - 1) / 2 = 2.5
		assert.InDelta(t, 2.5, balance, epsilon)
	})

	t.Run("minus balance count requires bipolar question", func(t *testing.T) {
		r := &RatingResult{Question: Question{Type: QuestionTypeGrade}, Counts: []int{1, 0, 0, 0, 0}}
		_, _, err := r.MinusBalanceCount()
		assert.ErrorIs(t, err, ErrWrongQuestionType)
	})

	t.Run("approval count", func(t *testing.T) {
		pos := &RatingResult{Question: Question{Type: QuestionTypePositiveYesNo}, Counts: []int{7, 3}}
		count, ok, err := pos.ApprovalCount()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 7, count)

		neg := &RatingResult{Question: Question{Type: QuestionTypeNegativeYesNo}, Counts: []int{7, 3}}
		count, ok, err = neg.ApprovalCount()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 3, count)

		unpublished := &RatingResult{Question: Question{Type: QuestionTypePositiveYesNo}}
		_, ok, err = unpublished.ApprovalCount()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("approval count requires yes no question", func(t *testing.T) {
		r := &RatingResult{Question: Question{Type: QuestionTypePositiveLikert}, Counts: []int{1, 0, 0, 0, 0}}
		_, _, err := r.ApprovalCount()
		assert.ErrorIs(t, err, ErrWrongQuestionType)
	})
}

func TestNewTextResult(t *testing.T) {
	_, err := NewTextResult(Question{Type: QuestionTypeGrade}, nil, TextAnswerVisibilityInfo{})
	assert.ErrorIs(t, err, ErrWrongQuestionType)

	r, err := NewTextResult(Question{Type: QuestionTypeText}, nil, TextAnswerVisibilityInfo{})
	require.NoError(t, err)
	assert.Equal(t, KindText, r.Kind())
}

func TestContributionResult_HasAnswers(t *testing.T) {
	text := Question{ID: 1, Type: QuestionTypeText}
	grade := Question{ID: 2, Type: QuestionTypeGrade}

	wrap := func(results ...QuestionResult) ContributionResult {
		return ContributionResult{QuestionnaireResults: []QuestionnaireResult{{QuestionResults: results}}}
	}

	tests := []struct {
		name   string
		result ContributionResult
		want   bool
	}{
		{name: "nothing", result: ContributionResult{}, want: false},
		{name: "heading only", result: wrap(&HeadingResult{Question: Question{Type: QuestionTypeHeading}}), want: false},
		{name: "empty text result", result: wrap(&TextResult{Question: text}), want: false},
		{
			name:   "text answers",
			result: wrap(&TextResult{Question: text, Answers: []TextAnswer{{ID: 1, State: TextAnswerPublished}}}),
			want:   true,
		},
		{name: "unpublished rating", result: wrap(&RatingResult{Question: grade}), want: false},
		{name: "zero rating", result: wrap(&RatingResult{Question: grade, Counts: []int{0, 0, 0, 0, 0}}), want: false},
		{name: "rating answers", result: wrap(&RatingResult{Question: grade, Counts: []int{0, 1, 0, 0, 0}}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.HasAnswers())
		})
	}
}

func TestEvaluationResult_QuestionnaireResults(t *testing.T) {
	r := &EvaluationResult{ContributionResults: []ContributionResult{
		{QuestionnaireResults: []QuestionnaireResult{{Questionnaire: Questionnaire{ID: 1}}}},
		{QuestionnaireResults: []QuestionnaireResult{{Questionnaire: Questionnaire{ID: 2}}, {Questionnaire: Questionnaire{ID: 3}}}},
	}}

	results := r.QuestionnaireResults()
	require.Len(t, results, 3)
	assert.Equal(t, int64(3), results[2].Questionnaire.ID)
}
