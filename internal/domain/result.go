package domain

import "fmt"

// EvaluationResult is the complete result tree of one evaluation. Results
// are built fresh per computation and never mutated afterwards.
type EvaluationResult struct {
	ContributionResults []ContributionResult `json:"contribution_results"`
}

// QuestionnaireResults flattens the questionnaire results of all contributions.
func (r *EvaluationResult) QuestionnaireResults() []QuestionnaireResult {
	var results []QuestionnaireResult
	for _, cr := range r.ContributionResults {
		results = append(results, cr.QuestionnaireResults...)
	}
	return results
}

// ContributionResult holds the results of one contribution.
type ContributionResult struct {
	// Contributor is nil for the general contribution.
	Contributor          *User                 `json:"contributor"`
	Label                string                `json:"label"`
	QuestionnaireResults []QuestionnaireResult `json:"questionnaire_results"`
}

// IsGeneral reports whether the result belongs to the general contribution.
func (r ContributionResult) IsGeneral() bool { return r.Contributor == nil }

// HasAnswers reports whether any text result contains answers or any
// rating result is published with a nonzero total.
func (r ContributionResult) HasAnswers() bool {
	for _, qr := range r.QuestionnaireResults {
		for _, result := range qr.QuestionResults {
			switch res := result.(type) {
			case *TextResult:
				if len(res.Answers) > 0 {
					return true
				}
			case *RatingResult:
				if res.HasAnswers() {
					return true
				}
			}
		}
	}
	return false
}

// QuestionnaireResult holds the results of one questionnaire within a contribution.
type QuestionnaireResult struct {
	Questionnaire   Questionnaire    `json:"questionnaire"`
	QuestionResults []QuestionResult `json:"question_results"`
}

// QuestionResult is the sealed variant of per-question results. It is
// implemented by *HeadingResult, *RatingResult and *TextResult only.
type QuestionResult interface {
	// ResultQuestion returns the question the result belongs to.
	ResultQuestion() Question

	// Kind returns the variant tag.
	Kind() QuestionKind

	isQuestionResult()
}

var (
	_ QuestionResult = (*HeadingResult)(nil)
	_ QuestionResult = (*RatingResult)(nil)
	_ QuestionResult = (*TextResult)(nil)
)

// HeadingResult marks the position of a heading question.
type HeadingResult struct {
	Question Question `json:"question"`
}

// ResultQuestion returns the heading question.
func (r *HeadingResult) ResultQuestion() Question { return r.Question }

// Kind returns KindHeading.
func (r *HeadingResult) Kind() QuestionKind { return KindHeading }

func (r *HeadingResult) isQuestionResult() {}

// TextAnswerVisibilityInfo describes who can read a contribution's text answers.
type TextAnswerVisibilityInfo struct {
	// VisibleByContribution lists the users that see the answers directly.
	VisibleByContribution []User `json:"visible_by_contribution"`

	// VisibleByDelegationCount counts additional users that see the answers
	// through a delegation.
	VisibleByDelegationCount int `json:"visible_by_delegation_count"`
}

// TextResult holds the text answers of a question within a contribution.
type TextResult struct {
	Question         Question                 `json:"question"`
	Answers          []TextAnswer             `json:"answers"`
	AnswersVisibleTo TextAnswerVisibilityInfo `json:"answers_visible_to"`
}

// NewTextResult creates a TextResult. It fails for questions that cannot
// have text answers.
func NewTextResult(q Question, answers []TextAnswer, visibleTo TextAnswerVisibilityInfo) (*TextResult, error) {
	if !q.CanHaveTextAnswers() {
		return nil, NewQuestionTypeError(q, "NewTextResult", ErrWrongQuestionType)
	}
	return &TextResult{Question: q, Answers: answers, AnswersVisibleTo: visibleTo}, nil
}

// ResultQuestion returns the text-capable question.
func (r *TextResult) ResultQuestion() Question { return r.Question }

// Kind returns KindText.
func (r *TextResult) Kind() QuestionKind { return KindText }

func (r *TextResult) isQuestionResult() {}

// RatingResult holds the per-value answer counts of a rating question.
type RatingResult struct {
	Question Question `json:"question"`

	// Counts is aligned to Choices().AnswerValues(). A nil slice means the
	// rating results are not publishable.
	Counts []int `json:"counts"`

	// AdditionalTextResult holds the free-text comments attached to the
	// rating question, if any were collected and may be shown.
	AdditionalTextResult *TextResult `json:"additional_text_result"`
}

// NewRatingResult tallies counters into a RatingResult. A nil counters
// slice yields an unpublished result. Counters for NoAnswer are skipped and
// counters for values outside the scale are rejected.
func NewRatingResult(q Question, counters []AnswerCounter, additional *TextResult) (*RatingResult, error) {
	choices, err := q.Choices()
	if err != nil {
		return nil, err
	}

	result := &RatingResult{Question: q, AdditionalTextResult: additional}
	if counters == nil {
		return result, nil
	}

	values := choices.AnswerValues()
	index := make(map[int]int, len(values))
	for i, v := range values {
		index[v] = i
	}

	counts := make([]int, len(values))
	verr := NewValidationError("answer counters")
	for _, c := range counters {
		if c.Answer == NoAnswer {
			continue
		}
		i, ok := index[c.Answer]
		if !ok {
			verr.AddError(fmt.Sprintf("question %d: answer %d not on scale", q.ID, c.Answer))
			continue
		}
		if c.Count < 0 {
			verr.AddError(fmt.Sprintf("question %d: negative count %d", q.ID, c.Count))
			continue
		}
		counts[i] = c.Count
	}
	if verr.HasErrors() {
		return nil, verr
	}

	result.Counts = counts
	return result, nil
}

// ResultQuestion returns the rating question.
func (r *RatingResult) ResultQuestion() Question { return r.Question }

// Kind returns KindRating.
func (r *RatingResult) Kind() QuestionKind { return KindRating }

func (r *RatingResult) isQuestionResult() {}

// Choices returns the scale of the result's question.
func (r *RatingResult) Choices() Choices {
	// The constructor guarantees a rating question.
	choices, _ := r.Question.Choices()
	return choices
}

// IsPublished reports whether counts are available.
func (r *RatingResult) IsPublished() bool { return r.Counts != nil }

// CountSum returns the number of tallied answers; ok is false when the
// result is unpublished.
func (r *RatingResult) CountSum() (sum int, ok bool) {
	if !r.IsPublished() {
		return 0, false
	}
	for _, c := range r.Counts {
		sum += c
	}
	return sum, true
}

// HasAnswers reports whether the result is published and any count is nonzero.
func (r *RatingResult) HasAnswers() bool {
	if !r.IsPublished() {
		return false
	}
	for _, c := range r.Counts {
		if c != 0 {
			return true
		}
	}
	return false
}

// Average returns the count-weighted mean grade, or nil without answers.
func (r *RatingResult) Average() *float64 {
	if !r.HasAnswers() {
		return nil
	}
	grades := r.Choices().Grades
	var weighted float64
	for i, c := range r.Counts {
		weighted += grades[i] * float64(c)
	}
	sum, _ := r.CountSum()
	avg := weighted / float64(sum)
	return &avg
}

// MinusBalanceCount returns how far a bipolar result leans to the minus
// side, in answer counts. It is only defined for bipolar questions; the
// second return value is false when the result is unpublished.
func (r *RatingResult) MinusBalanceCount() (float64, bool, error) {
	if !r.Question.IsBipolarLikertQuestion() {
		return 0, false, NewQuestionTypeError(r.Question, "MinusBalanceCount", ErrWrongQuestionType)
	}
	sum, ok := r.CountSum()
	if !ok {
		return 0, false, nil
	}
	portionLeft := float64(r.Counts[0]+r.Counts[1]+r.Counts[2]) + float64(r.Counts[3])/2
	return (float64(sum) - portionLeft) / 2, true, nil
}

// ApprovalCount returns the number of desired answers of a yes/no result.
// The second return value is false when the result is unpublished.
func (r *RatingResult) ApprovalCount() (int, bool, error) {
	if !r.Question.IsYesNoQuestion() {
		return 0, false, NewQuestionTypeError(r.Question, "ApprovalCount", ErrWrongQuestionType)
	}
	if !r.IsPublished() {
		return 0, false, nil
	}
	if r.Question.IsPositiveYesNoQuestion() {
		return r.Counts[0], true, nil
	}
	return r.Counts[1], true, nil
}
