package domain

import (
	"encoding/json"
	"fmt"
)

// NoAnswer is the answer value recorded when a respondent skipped a rating
// question. It is part of every rating scale but never tallied.
const NoAnswer = 6

// QuestionType identifies how a question is presented and answered.
// The numeric values match the ones persisted by the storage layer.
type QuestionType int

// Supported question types.
const (
	QuestionTypeText           QuestionType = 0
	QuestionTypePositiveLikert QuestionType = 1
	QuestionTypeGrade          QuestionType = 2
	QuestionTypePositiveYesNo  QuestionType = 3
	QuestionTypeNegativeYesNo  QuestionType = 4
	QuestionTypeHeading        QuestionType = 5
	QuestionTypeEasyDifficult  QuestionType = 6
	QuestionTypeFewMany        QuestionType = 7
	QuestionTypeLittleMuch     QuestionType = 8
	QuestionTypeSmallLarge     QuestionType = 9
	QuestionTypeSlowFast       QuestionType = 10
	QuestionTypeShortLong      QuestionType = 11
	QuestionTypeNegativeLikert QuestionType = 12
)

// QuestionKind is the coarse variant of a question. Every QuestionType maps
// to exactly one kind, and result construction switches over kinds.
type QuestionKind int

// Question kinds.
const (
	KindHeading QuestionKind = iota + 1
	KindText
	KindRating
)

var questionKindNames = map[QuestionKind]string{
	KindHeading: "heading",
	KindText:    "text",
	KindRating:  "rating",
}

// String returns the lowercase name of the kind.
func (k QuestionKind) String() string {
	if name, ok := questionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("QuestionKind(%d)", int(k))
}

// MarshalJSON encodes the kind by name.
func (k QuestionKind) MarshalJSON() ([]byte, error) {
	name, ok := questionKindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuestionKind, int(k))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a kind name produced by MarshalJSON.
func (k *QuestionKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, n := range questionKindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownQuestionKind, name)
}

// Choices describes the allowed answer values of a rating scale and the
// grade each value stands for. Values and Grades are aligned by index;
// Values additionally ends with the NoAnswer sentinel which has no grade.
type Choices struct {
	Values    []int
	Grades    []float64
	IsBipolar bool
}

var (
	positiveLikertChoices = Choices{
		Values: []int{1, 2, 3, 4, 5, NoAnswer},
		Grades: []float64{1, 2, 3, 4, 5},
	}
	negativeLikertChoices = Choices{
		Values: []int{5, 4, 3, 2, 1, NoAnswer},
		Grades: []float64{5, 4, 3, 2, 1},
	}
	gradeChoices = Choices{
		Values: []int{1, 2, 3, 4, 5, NoAnswer},
		Grades: []float64{1, 2, 3, 4, 5},
	}
	bipolarChoices = Choices{
		Values:    []int{-3, -2, -1, 0, 1, 2, 3, NoAnswer},
		Grades:    []float64{5, 11.0 / 3, 7.0 / 3, 1, 7.0 / 3, 11.0 / 3, 5},
		IsBipolar: true,
	}
	positiveYesNoChoices = Choices{
		Values: []int{1, 5, NoAnswer},
		Grades: []float64{1, 5},
	}
	negativeYesNoChoices = Choices{
		Values: []int{5, 1, NoAnswer},
		Grades: []float64{5, 1},
	}
)

// AnswerValues returns the tallied values of the scale, i.e. every value
// except NoAnswer, in scale order.
func (c Choices) AnswerValues() []int {
	values := make([]int, 0, len(c.Values))
	for _, v := range c.Values {
		if v != NoAnswer {
			values = append(values, v)
		}
	}
	return values
}

// Question is a single item of a questionnaire.
type Question struct {
	ID   int64        `json:"id"`
	Type QuestionType `json:"type"`
	Text string       `json:"text"`

	// AllowsAdditionalTextAnswers lets respondents attach a free-text
	// comment to a rating question.
	AllowsAdditionalTextAnswers bool `json:"allows_additional_textanswers"`
}

// Kind reports which result variant the question produces. Unknown types
// yield zero, which callers treat as ErrUnknownQuestionKind.
func (q Question) Kind() QuestionKind {
	switch q.Type {
	case QuestionTypeHeading:
		return KindHeading
	case QuestionTypeText:
		return KindText
	case QuestionTypePositiveLikert, QuestionTypeNegativeLikert, QuestionTypeGrade,
		QuestionTypeEasyDifficult, QuestionTypeFewMany, QuestionTypeLittleMuch,
		QuestionTypeSmallLarge, QuestionTypeSlowFast, QuestionTypeShortLong,
		QuestionTypePositiveYesNo, QuestionTypeNegativeYesNo:
		return KindRating
	default:
		return 0
	}
}

// IsHeadingQuestion reports whether the question only structures the
// questionnaire and collects no answers.
func (q Question) IsHeadingQuestion() bool { return q.Kind() == KindHeading }

// IsTextQuestion reports whether the question collects free text only.
func (q Question) IsTextQuestion() bool { return q.Kind() == KindText }

// IsRatingQuestion reports whether the question collects answers on a scale.
func (q Question) IsRatingQuestion() bool { return q.Kind() == KindRating }

// IsGradeQuestion reports whether the question asks for a school grade.
func (q Question) IsGradeQuestion() bool { return q.Type == QuestionTypeGrade }

// IsNonGradeRatingQuestion reports whether the question is rated on a scale
// other than the grade scale.
func (q Question) IsNonGradeRatingQuestion() bool {
	return q.IsRatingQuestion() && !q.IsGradeQuestion()
}

// IsLikertQuestion reports whether the question uses a unipolar agreement scale.
func (q Question) IsLikertQuestion() bool {
	return q.Type == QuestionTypePositiveLikert || q.Type == QuestionTypeNegativeLikert
}

// IsBipolarLikertQuestion reports whether the question uses a scale whose
// best grade lies in the middle.
func (q Question) IsBipolarLikertQuestion() bool {
	switch q.Type {
	case QuestionTypeEasyDifficult, QuestionTypeFewMany, QuestionTypeLittleMuch,
		QuestionTypeSmallLarge, QuestionTypeSlowFast, QuestionTypeShortLong:
		return true
	default:
		return false
	}
}

// IsYesNoQuestion reports whether the question is answered with yes or no.
func (q Question) IsYesNoQuestion() bool {
	return q.Type == QuestionTypePositiveYesNo || q.Type == QuestionTypeNegativeYesNo
}

// IsPositiveYesNoQuestion reports whether "yes" is the desired answer.
func (q Question) IsPositiveYesNoQuestion() bool { return q.Type == QuestionTypePositiveYesNo }

// CanHaveTextAnswers reports whether free-text answers may exist for the question.
func (q Question) CanHaveTextAnswers() bool {
	return q.IsTextQuestion() || (q.IsRatingQuestion() && q.AllowsAdditionalTextAnswers)
}

// Choices returns the rating scale of the question. It fails with
// ErrNotRatingQuestion for heading and text questions.
func (q Question) Choices() (Choices, error) {
	switch {
	case q.Type == QuestionTypePositiveLikert:
		return positiveLikertChoices, nil
	case q.Type == QuestionTypeNegativeLikert:
		return negativeLikertChoices, nil
	case q.Type == QuestionTypeGrade:
		return gradeChoices, nil
	case q.IsBipolarLikertQuestion():
		return bipolarChoices, nil
	case q.Type == QuestionTypePositiveYesNo:
		return positiveYesNoChoices, nil
	case q.Type == QuestionTypeNegativeYesNo:
		return negativeYesNoChoices, nil
	default:
		return Choices{}, NewQuestionTypeError(q, "Choices", ErrNotRatingQuestion)
	}
}

// Questionnaire is an ordered list of questions attached to a contribution.
type Questionnaire struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}
