package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvaluationResult() *EvaluationResult {
	lecturer := &User{ID: 11, FirstName: "Ada", LastName: "Lovelace"}
	general := Contribution{ID: 1, EvaluationID: 5, CourseID: 2, Label: "general"}
	text := Question{ID: 3, Type: QuestionTypeText, Text: "Comments"}
	grade := Question{ID: 4, Type: QuestionTypeGrade, Text: "Overall", AllowsAdditionalTextAnswers: true}
	heading := Question{ID: 5, Type: QuestionTypeHeading, Text: "About the course"}

	visible := TextAnswerVisibilityInfo{VisibleByContribution: []User{*lecturer}, VisibleByDelegationCount: 2}

	return &EvaluationResult{ContributionResults: []ContributionResult{
		{
			Label: "general",
			QuestionnaireResults: []QuestionnaireResult{{
				Questionnaire: Questionnaire{ID: 7, Name: "Course", Questions: []Question{heading, text, grade}},
				QuestionResults: []QuestionResult{
					&HeadingResult{Question: heading},
					&TextResult{
						Question: text,
						Answers: []TextAnswer{
							{ID: 100, QuestionID: 3, Contribution: general, Answer: "great", State: TextAnswerPublished},
						},
						AnswersVisibleTo: visible,
					},
					&RatingResult{
						Question: grade,
						Counts:   []int{1, 2, 3, 0, 0},
						AdditionalTextResult: &TextResult{
							Question:         grade,
							Answers:          []TextAnswer{},
							AnswersVisibleTo: visible,
						},
					},
				},
			}},
		},
		{
			Contributor: lecturer,
			Label:       "lecturer",
			QuestionnaireResults: []QuestionnaireResult{{
				Questionnaire:   Questionnaire{ID: 8, Name: "Lecturer", Questions: []Question{grade}},
				QuestionResults: []QuestionResult{&RatingResult{Question: grade}},
			}},
		},
	}}
}

func TestEvaluationResult_RoundTrip(t *testing.T) {
	original := sampleEvaluationResult()

	data, err := EncodeEvaluationResult(original)
	require.NoError(t, err)

	decoded, err := DecodeEvaluationResult(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	rating, ok := decoded.ContributionResults[1].QuestionnaireResults[0].QuestionResults[0].(*RatingResult)
	require.True(t, ok, "rating result should decode to its concrete type")
	assert.False(t, rating.IsPublished(), "unpublished rating must stay unpublished")
}

func TestDecodeEvaluationResult_Errors(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodeEvaluationResult([]byte("{"))
		assert.Error(t, err)
	})

	t.Run("unknown kind", func(t *testing.T) {
		data := []byte(`{"contribution_results":[{"contributor":null,"label":"","questionnaire_results":[` +
			`{"questionnaire":{"id":1,"name":"","questions":null},"question_results":[{"kind":"matrix","result":{}}]}]}]}`)
		_, err := DecodeEvaluationResult(data)
		assert.ErrorIs(t, err, ErrUnknownQuestionKind)
	})
}
