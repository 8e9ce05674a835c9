package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-evalstats/infrastructure/cache"
	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/testutils"
)

var (
	alice = domain.User{ID: 7, FirstName: "Alice", LastName: "Zimmer"}
	bob   = domain.User{ID: 8, FirstName: "Bob", LastName: "Adler"}
	carol = domain.User{ID: 9, FirstName: "Carol", LastName: "Berg", IsReviewer: true}
	dave  = domain.User{ID: 10, FirstName: "Dave", LastName: "Cole"}
	eve   = domain.User{ID: 11, FirstName: "Eve", LastName: "Dorn"}
)

var (
	headingQuestion = domain.Question{ID: 10, Type: domain.QuestionTypeHeading, Text: "General"}
	gradeQuestion   = domain.Question{ID: 11, Type: domain.QuestionTypeGrade, Text: "Overall", AllowsAdditionalTextAnswers: true}
	likertQuestion  = domain.Question{ID: 12, Type: domain.QuestionTypePositiveLikert, Text: "Well organized"}
	textQuestion    = domain.Question{ID: 13, Type: domain.QuestionTypeText, Text: "Comments"}
	lecturerGrade   = domain.Question{ID: 21, Type: domain.QuestionTypeGrade, Text: "Lecturer grade"}
	singleResultQ   = domain.Question{ID: 50, Type: domain.QuestionTypeGrade, Text: "Single result"}
)

const testCourseID = 10

// fixture is a course with one regular evaluation. The evaluation has a
// general contribution with heading, grade, likert and text questions and a
// contribution of alice with one grade question.
type fixture struct {
	store      *testutils.MemoryStore
	cache      *cache.MemoryCache
	service    *ResultService
	calculator *DistributionCalculator
	evaluation domain.Evaluation
	general    domain.Contribution
	lecturer   domain.Contribution
}

func newFixture(t *testing.T, state domain.EvaluationState) *fixture {
	t.Helper()

	e := domain.Evaluation{
		ID:              1,
		CourseID:        testCourseID,
		Name:            "Lecture",
		State:           state,
		Weight:          1,
		NumParticipants: 10,
		NumVoters:       5,
	}
	general := domain.Contribution{ID: 100, EvaluationID: e.ID, CourseID: testCourseID}
	lecturer := domain.Contribution{
		ID:                   200,
		EvaluationID:         e.ID,
		CourseID:             testCourseID,
		Contributor:          &alice,
		Label:                "Lecturer",
		TextAnswerVisibility: domain.VisibilityGeneralTextAnswers,
	}

	store := testutils.NewMemoryStore().
		AddEvaluation(e).
		AddContribution(general, domain.Questionnaire{
			ID:        1000,
			Name:      "Course",
			Questions: []domain.Question{headingQuestion, gradeQuestion, likertQuestion, textQuestion},
		}).
		AddContribution(lecturer, domain.Questionnaire{
			ID:        1001,
			Name:      "Lecturer",
			Questions: []domain.Question{lecturerGrade},
		}).
		AddAnswerCounters(
			domain.AnswerCounter{QuestionID: gradeQuestion.ID, ContributionID: general.ID, Answer: 1, Count: 2},
			domain.AnswerCounter{QuestionID: gradeQuestion.ID, ContributionID: general.ID, Answer: 2, Count: 2},
			domain.AnswerCounter{QuestionID: gradeQuestion.ID, ContributionID: general.ID, Answer: domain.NoAnswer, Count: 1},
			domain.AnswerCounter{QuestionID: likertQuestion.ID, ContributionID: general.ID, Answer: 5, Count: 4},
			domain.AnswerCounter{QuestionID: lecturerGrade.ID, ContributionID: lecturer.ID, Answer: 3, Count: 5},
		).
		AddTextAnswers(
			domain.TextAnswer{ID: 1, QuestionID: textQuestion.ID, Contribution: general, Answer: "clear structure", State: domain.TextAnswerPublished},
			domain.TextAnswer{ID: 2, QuestionID: textQuestion.ID, Contribution: general, Answer: "for the staff", State: domain.TextAnswerPrivate},
			domain.TextAnswer{ID: 3, QuestionID: textQuestion.ID, Contribution: general, Answer: "rude", State: domain.TextAnswerHidden},
			domain.TextAnswer{ID: 4, QuestionID: textQuestion.ID, Contribution: general, Answer: "pending", State: domain.TextAnswerNotReviewed},
		).
		SetSingleResultQuestion(singleResultQ).
		AddCourseResponsibles(testCourseID, bob).
		AddDelegates(alice.ID, dave).
		AddDelegates(bob.ID, alice)

	c := cache.NewMemoryCache()
	service, err := NewResultService(store, c, CacheConfig{WarmConcurrency: 2}, domain.DefaultPublishingThresholds(), nil, nil)
	require.NoError(t, err)

	return &fixture{
		store:      store,
		cache:      c,
		service:    service,
		calculator: NewDistributionCalculator(service, DefaultConfig().Weights),
		evaluation: e,
		general:    general,
		lecturer:   lecturer,
	}
}

// addSingleResult registers a published single-result evaluation of the
// fixture course whose voters all chose answer.
func (f *fixture) addSingleResult(id int64, state domain.EvaluationState, weight float64, answer, count int) domain.Evaluation {
	e := domain.Evaluation{
		ID:             id,
		CourseID:       testCourseID,
		Name:           "Exam",
		State:          state,
		Weight:         weight,
		IsSingleResult: true,
	}
	contribution := domain.Contribution{ID: singleResultContributionID(id), EvaluationID: id, CourseID: testCourseID}
	f.store.
		AddEvaluation(e).
		AddContribution(contribution).
		AddAnswerCounters(domain.AnswerCounter{
			QuestionID:     singleResultQ.ID,
			ContributionID: contribution.ID,
			Answer:         answer,
			Count:          count,
		})
	return e
}

func singleResultContributionID(evaluationID int64) int64 {
	return evaluationID*1000 + 1
}

func (f *fixture) cacheResults(t *testing.T) {
	t.Helper()
	require.NoError(t, f.service.CacheResults(context.Background(), f.evaluation))
}
