// Package testutils provides in-memory fixtures for testing the results core.
package testutils

import (
	"context"
	"slices"
	"sync"

	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
)

var _ ports.Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory ports.Store populated through its Add
// methods. It is safe for concurrent use, so it also serves tests of
// parallel cache warm-up.
type MemoryStore struct {
	mu sync.RWMutex

	evaluations    []domain.Evaluation
	contributions  []domain.Contribution
	questionnaires map[int64][]domain.Questionnaire
	counters       []domain.AnswerCounter
	textAnswers    []domain.TextAnswer
	singleResult   *domain.Question
	responsibles   map[int64][]domain.User
	delegates      map[int64][]domain.User
	failures       map[string]error
	calls          map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questionnaires: make(map[int64][]domain.Questionnaire),
		responsibles:   make(map[int64][]domain.User),
		delegates:      make(map[int64][]domain.User),
		failures:       make(map[string]error),
		calls:          make(map[string]int),
	}
}

// AddEvaluation registers evaluations.
func (s *MemoryStore) AddEvaluation(evaluations ...domain.Evaluation) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations = append(s.evaluations, evaluations...)
	return s
}

// AddContribution registers a contribution with its questionnaires.
func (s *MemoryStore) AddContribution(c domain.Contribution, questionnaires ...domain.Questionnaire) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contributions = append(s.contributions, c)
	s.questionnaires[c.ID] = append(s.questionnaires[c.ID], questionnaires...)
	return s
}

// AddAnswerCounters registers rating answer counts.
func (s *MemoryStore) AddAnswerCounters(counters ...domain.AnswerCounter) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = append(s.counters, counters...)
	return s
}

// AddTextAnswers registers text answers.
func (s *MemoryStore) AddTextAnswers(answers ...domain.TextAnswer) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textAnswers = append(s.textAnswers, answers...)
	return s
}

// SetSingleResultQuestion sets the question returned by SingleResultQuestion.
func (s *MemoryStore) SetSingleResultQuestion(q domain.Question) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.singleResult = &q
	return s
}

// AddCourseResponsibles registers users responsible for a course.
func (s *MemoryStore) AddCourseResponsibles(courseID int64, users ...domain.User) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responsibles[courseID] = append(s.responsibles[courseID], users...)
	return s
}

// AddDelegates registers users who represent the user with userID.
func (s *MemoryStore) AddDelegates(userID int64, delegates ...domain.User) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegates[userID] = append(s.delegates[userID], delegates...)
	return s
}

// FailQuery makes every later call of the named Store method return err.
func (s *MemoryStore) FailQuery(query string, err error) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[query] = err
	return s
}

// Calls returns how often the named Store method was called.
func (s *MemoryStore) Calls(query string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[query]
}

// begin records a call and returns the injected failure, if any. The
// caller must hold the write lock.
func (s *MemoryStore) begin(query string) error {
	s.calls[query]++
	if err := s.failures[query]; err != nil {
		return ports.NewStoreError(query, err)
	}
	return nil
}

// Contributions implements ports.Store.
func (s *MemoryStore) Contributions(_ context.Context, evaluationID int64) ([]domain.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Contributions"); err != nil {
		return nil, err
	}

	var out []domain.Contribution
	for _, c := range s.contributions {
		if c.EvaluationID == evaluationID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Questionnaires implements ports.Store.
func (s *MemoryStore) Questionnaires(_ context.Context, contributionID int64) ([]domain.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("Questionnaires"); err != nil {
		return nil, err
	}
	return slices.Clone(s.questionnaires[contributionID]), nil
}

// AnswerCounters implements ports.Store.
func (s *MemoryStore) AnswerCounters(_ context.Context, contributionID, questionID int64) ([]domain.AnswerCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("AnswerCounters"); err != nil {
		return nil, err
	}

	out := make([]domain.AnswerCounter, 0)
	for _, c := range s.counters {
		if c.ContributionID == contributionID && c.QuestionID == questionID {
			out = append(out, c)
		}
	}
	return out, nil
}

// EvaluationAnswerCounters implements ports.Store.
func (s *MemoryStore) EvaluationAnswerCounters(_ context.Context, evaluationID int64) ([]domain.AnswerCounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("EvaluationAnswerCounters"); err != nil {
		return nil, err
	}

	contributionIDs := make(map[int64]struct{})
	for _, c := range s.contributions {
		if c.EvaluationID == evaluationID {
			contributionIDs[c.ID] = struct{}{}
		}
	}
	out := make([]domain.AnswerCounter, 0)
	for _, c := range s.counters {
		if _, ok := contributionIDs[c.ContributionID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// TextAnswers implements ports.Store.
func (s *MemoryStore) TextAnswers(
	_ context.Context,
	contributionID, questionID int64,
	states ...domain.TextAnswerState,
) ([]domain.TextAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("TextAnswers"); err != nil {
		return nil, err
	}

	out := make([]domain.TextAnswer, 0)
	for _, a := range s.textAnswers {
		if a.Contribution.ID != contributionID || a.QuestionID != questionID {
			continue
		}
		if len(states) > 0 && !slices.Contains(states, a.State) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// SingleResultQuestion implements ports.Store.
func (s *MemoryStore) SingleResultQuestion(_ context.Context) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("SingleResultQuestion"); err != nil {
		return domain.Question{}, err
	}
	if s.singleResult == nil {
		return domain.Question{}, ports.NewStoreError("SingleResultQuestion", ports.ErrNotFound)
	}
	return *s.singleResult, nil
}

// CourseEvaluations implements ports.Store.
func (s *MemoryStore) CourseEvaluations(_ context.Context, courseID int64) ([]domain.Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("CourseEvaluations"); err != nil {
		return nil, err
	}

	var out []domain.Evaluation
	for _, e := range s.evaluations {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

// GeneralTextAnswerContributors implements ports.Store.
func (s *MemoryStore) GeneralTextAnswerContributors(_ context.Context, evaluationID int64) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("GeneralTextAnswerContributors"); err != nil {
		return nil, err
	}

	var users []domain.User
	for _, c := range s.contributions {
		if c.EvaluationID != evaluationID || c.Contributor == nil {
			continue
		}
		if c.TextAnswerVisibility == domain.VisibilityGeneralTextAnswers {
			users = append(users, *c.Contributor)
		}
	}
	return distinct(users), nil
}

// CourseResponsibles implements ports.Store.
func (s *MemoryStore) CourseResponsibles(_ context.Context, courseID int64) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("CourseResponsibles"); err != nil {
		return nil, err
	}
	return slices.Clone(s.responsibles[courseID]), nil
}

// DelegatesOf implements ports.Store.
func (s *MemoryStore) DelegatesOf(_ context.Context, userIDs []int64) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin("DelegatesOf"); err != nil {
		return nil, err
	}

	var users []domain.User
	for _, id := range userIDs {
		users = append(users, s.delegates[id]...)
	}
	return distinct(users), nil
}

func distinct(users []domain.User) []domain.User {
	seen := make(map[int64]struct{}, len(users))
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}
	return out
}
