package domain

import "fmt"

// EvaluationState is the lifecycle state of an evaluation. States are
// ordered; comparisons such as state >= StateInEvaluation are meaningful.
type EvaluationState int

// Lifecycle states in order.
const (
	StateNew            EvaluationState = 10
	StatePrepared       EvaluationState = 20
	StateEditorApproved EvaluationState = 30
	StateApproved       EvaluationState = 40
	StateInEvaluation   EvaluationState = 50
	StateEvaluated      EvaluationState = 60
	StateReviewed       EvaluationState = 70
	StatePublished      EvaluationState = 80
)

var evaluationStateNames = map[EvaluationState]string{
	StateNew:            "new",
	StatePrepared:       "prepared",
	StateEditorApproved: "editor_approved",
	StateApproved:       "approved",
	StateInEvaluation:   "in_evaluation",
	StateEvaluated:      "evaluated",
	StateReviewed:       "reviewed",
	StatePublished:      "published",
}

// String returns the snake_case name of the state.
func (s EvaluationState) String() string {
	if name, ok := evaluationStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("EvaluationState(%d)", int(s))
}

// PublishingThresholds decide whether enough people answered for results
// to be shown without compromising anonymity or significance.
type PublishingThresholds struct {
	// VoterCountForRatingResults is the minimum number of voters before
	// rating counts are published.
	VoterCountForRatingResults int

	// VoterCountForTextResults is the minimum number of voters before text
	// answers are published.
	VoterCountForTextResults int

	// VoterPercentageForAverageGrade is the minimum share of participants
	// (0..1) who must have voted before an average grade is published.
	VoterPercentageForAverageGrade float64
}

// DefaultPublishingThresholds returns the thresholds used when none are configured.
func DefaultPublishingThresholds() PublishingThresholds {
	return PublishingThresholds{
		VoterCountForRatingResults:     2,
		VoterCountForTextResults:       2,
		VoterPercentageForAverageGrade: 0.2,
	}
}

// Course groups the evaluations of one lecture.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Evaluation is one survey run for a course.
type Evaluation struct {
	ID       int64           `json:"id"`
	CourseID int64           `json:"course_id"`
	Name     string          `json:"name"`
	State    EvaluationState `json:"state"`

	// Weight is the relative influence of the evaluation on its course's
	// aggregated distribution.
	Weight float64 `json:"weight"`

	// IsSingleResult marks evaluations imported as one grade distribution
	// without a questionnaire structure.
	IsSingleResult bool `json:"is_single_result"`

	NumParticipants int `json:"num_participants"`
	NumVoters       int `json:"num_voters"`
}

// IsPublished reports whether the evaluation reached its final state.
func (e Evaluation) IsPublished() bool { return e.State == StatePublished }

// CanStaffSeeAverageGrade reports whether the evaluation period is over.
func (e Evaluation) CanStaffSeeAverageGrade() bool { return e.State >= StateEvaluated }

// CanPublishRatingResults reports whether rating counts may be shown.
func (e Evaluation) CanPublishRatingResults(t PublishingThresholds) bool {
	if e.IsSingleResult {
		return true
	}
	return e.NumVoters >= t.VoterCountForRatingResults
}

// CanPublishTextResults reports whether text answers may be shown.
func (e Evaluation) CanPublishTextResults(t PublishingThresholds) bool {
	if e.IsSingleResult {
		return false
	}
	return e.NumVoters >= t.VoterCountForTextResults
}

// CanPublishAverageGrade reports whether enough participants voted for the
// average grade to be significant. Single results always qualify.
func (e Evaluation) CanPublishAverageGrade(t PublishingThresholds) bool {
	if e.IsSingleResult {
		return true
	}
	if !e.CanPublishRatingResults(t) || e.NumParticipants == 0 {
		return false
	}
	return float64(e.NumVoters)/float64(e.NumParticipants) >= t.VoterPercentageForAverageGrade
}

// User is a person known to the platform.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// IsProxyUser marks shared accounts that stand for a group of people;
	// delegates of proxy users are not counted as text answer readers.
	IsProxyUser bool `json:"is_proxy_user"`

	// IsReviewer marks staff members who review text answers.
	IsReviewer bool `json:"is_reviewer"`
}

// TextAnswerVisibility controls which text answers a contributor may read.
type TextAnswerVisibility string

// Text answer visibility modes.
const (
	// VisibilityOwnTextAnswers limits a contributor to answers about them.
	VisibilityOwnTextAnswers TextAnswerVisibility = "OWN"

	// VisibilityGeneralTextAnswers additionally grants access to answers of
	// the evaluation's general contribution.
	VisibilityGeneralTextAnswers TextAnswerVisibility = "GENERAL"
)

// Contribution ties a contributor (or nobody, for the general part) to the
// questionnaires they are evaluated with.
type Contribution struct {
	ID           int64 `json:"id"`
	EvaluationID int64 `json:"evaluation_id"`
	CourseID     int64 `json:"course_id"`

	// Contributor is nil for the general contribution.
	Contributor *User  `json:"contributor"`
	Label       string `json:"label"`

	TextAnswerVisibility TextAnswerVisibility `json:"textanswer_visibility"`
}

// IsGeneral reports whether the contribution covers the evaluation as a
// whole rather than one contributor.
func (c Contribution) IsGeneral() bool { return c.Contributor == nil }

// IsContributor reports whether u is the contribution's contributor.
func (c Contribution) IsContributor(u User) bool {
	return c.Contributor != nil && c.Contributor.ID == u.ID
}

// AnswerCounter is the number of respondents who chose Answer for a
// question within one contribution.
type AnswerCounter struct {
	QuestionID     int64 `json:"question_id"`
	ContributionID int64 `json:"contribution_id"`
	Answer         int   `json:"answer"`
	Count          int   `json:"count"`
}

// TextAnswerState is the review state of a text answer.
type TextAnswerState string

// Text answer review states.
const (
	TextAnswerHidden      TextAnswerState = "HI"
	TextAnswerPublished   TextAnswerState = "PU"
	TextAnswerPrivate     TextAnswerState = "PR"
	TextAnswerNotReviewed TextAnswerState = "NR"
)

// TextAnswer is one free-text response.
type TextAnswer struct {
	ID           int64           `json:"id"`
	QuestionID   int64           `json:"question_id"`
	Contribution Contribution    `json:"contribution"`
	Answer       string          `json:"answer"`
	State        TextAnswerState `json:"state"`
}

// IsPrivate reports whether only the contributor may read the answer.
func (a TextAnswer) IsPrivate() bool { return a.State == TextAnswerPrivate }

// IsPublished reports whether the answer passed review for publication.
func (a TextAnswer) IsPublished() bool { return a.State == TextAnswerPublished }
