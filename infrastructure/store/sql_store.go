package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
)

var _ ports.Store = (*SQLStore)(nil)

// SQLStore implements ports.Store on the schema created by Open. Queries use
// $N placeholders, which both the sqlite and the pgx driver accept.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `u.id, u.first_name, u.last_name, u.is_proxy_user, u.is_reviewer`

const contributionColumns = `c.id, c.evaluation_id, e.course_id, c.label, c.textanswer_visibility,
       u.id, u.first_name, u.last_name, u.is_proxy_user, u.is_reviewer`

const contributionJoins = `
FROM contributions c
JOIN evaluations e ON e.id = c.evaluation_id
LEFT JOIN users u ON u.id = c.contributor_id`

func scanUser(s rowScanner) (domain.User, error) {
	var u domain.User
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.IsProxyUser, &u.IsReviewer)
	return u, err
}

// scanContribution scans contributionColumns followed by extra.
func scanContribution(s rowScanner, extra ...any) (domain.Contribution, error) {
	var (
		c          domain.Contribution
		visibility string
		userID     sql.NullInt64
		firstName  sql.NullString
		lastName   sql.NullString
		isProxy    sql.NullBool
		isReviewer sql.NullBool
	)
	dest := append([]any{
		&c.ID, &c.EvaluationID, &c.CourseID, &c.Label, &visibility,
		&userID, &firstName, &lastName, &isProxy, &isReviewer,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return domain.Contribution{}, err
	}

	c.TextAnswerVisibility = domain.TextAnswerVisibility(visibility)
	if userID.Valid {
		c.Contributor = &domain.User{
			ID:          userID.Int64,
			FirstName:   firstName.String,
			LastName:    lastName.String,
			IsProxyUser: isProxy.Bool,
			IsReviewer:  isReviewer.Bool,
		}
	}
	return c, nil
}

// placeholders returns "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

// Contributions implements ports.Store.
func (s *SQLStore) Contributions(ctx context.Context, evaluationID int64) ([]domain.Contribution, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contributionColumns+contributionJoins+`
WHERE c.evaluation_id = $1
ORDER BY c.contributor_id IS NOT NULL, c.id`, evaluationID)
	if err != nil {
		return nil, ports.NewStoreError("Contributions", err)
	}
	defer rows.Close()

	var out []domain.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, ports.NewStoreError("Contributions", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError("Contributions", err)
	}
	return out, nil
}

// Questionnaires implements ports.Store.
func (s *SQLStore) Questionnaires(ctx context.Context, contributionID int64) ([]domain.Questionnaire, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT qn.id, qn.name, q.id, q.type, q.text, q.allows_additional_textanswers
FROM contribution_questionnaires cq
JOIN questionnaires qn ON qn.id = cq.questionnaire_id
LEFT JOIN questions q ON q.questionnaire_id = qn.id
WHERE cq.contribution_id = $1
ORDER BY cq.position, qn.id, q.position, q.id`, contributionID)
	if err != nil {
		return nil, ports.NewStoreError("Questionnaires", err)
	}
	defer rows.Close()

	var out []domain.Questionnaire
	for rows.Next() {
		var (
			questionnaireID int64
			name            string
			questionID      sql.NullInt64
			questionType    sql.NullInt64
			text            sql.NullString
			allowsText      sql.NullBool
		)
		if err := rows.Scan(&questionnaireID, &name, &questionID, &questionType, &text, &allowsText); err != nil {
			return nil, ports.NewStoreError("Questionnaires", err)
		}

		if len(out) == 0 || out[len(out)-1].ID != questionnaireID {
			out = append(out, domain.Questionnaire{ID: questionnaireID, Name: name, Questions: []domain.Question{}})
		}
		if questionID.Valid {
			current := &out[len(out)-1]
			current.Questions = append(current.Questions, domain.Question{
				ID:                          questionID.Int64,
				Type:                        domain.QuestionType(questionType.Int64),
				Text:                        text.String,
				AllowsAdditionalTextAnswers: allowsText.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError("Questionnaires", err)
	}
	return out, nil
}

// AnswerCounters implements ports.Store.
func (s *SQLStore) AnswerCounters(ctx context.Context, contributionID, questionID int64) ([]domain.AnswerCounter, error) {
	return s.queryCounters(ctx, "AnswerCounters", `
SELECT question_id, contribution_id, answer, count
FROM rating_answer_counters
WHERE contribution_id = $1 AND question_id = $2
ORDER BY answer`, contributionID, questionID)
}

// EvaluationAnswerCounters implements ports.Store.
func (s *SQLStore) EvaluationAnswerCounters(ctx context.Context, evaluationID int64) ([]domain.AnswerCounter, error) {
	return s.queryCounters(ctx, "EvaluationAnswerCounters", `
SELECT r.question_id, r.contribution_id, r.answer, r.count
FROM rating_answer_counters r
JOIN contributions c ON c.id = r.contribution_id
WHERE c.evaluation_id = $1
ORDER BY r.contribution_id, r.question_id, r.answer`, evaluationID)
}

func (s *SQLStore) queryCounters(ctx context.Context, query, stmt string, args ...any) ([]domain.AnswerCounter, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ports.NewStoreError(query, err)
	}
	defer rows.Close()

	out := make([]domain.AnswerCounter, 0)
	for rows.Next() {
		var c domain.AnswerCounter
		if err := rows.Scan(&c.QuestionID, &c.ContributionID, &c.Answer, &c.Count); err != nil {
			return nil, ports.NewStoreError(query, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError(query, err)
	}
	return out, nil
}

// TextAnswers implements ports.Store. Without states, answers in every
// state are returned.
func (s *SQLStore) TextAnswers(
	ctx context.Context,
	contributionID, questionID int64,
	states ...domain.TextAnswerState,
) ([]domain.TextAnswer, error) {
	stmt := `SELECT ` + contributionColumns + `,
       t.id, t.question_id, t.answer, t.state` + contributionJoins + `
JOIN text_answers t ON t.contribution_id = c.id
WHERE t.contribution_id = $1 AND t.question_id = $2`
	args := []any{contributionID, questionID}
	if len(states) > 0 {
		stmt += ` AND t.state IN (` + placeholders(3, len(states)) + `)`
		for _, st := range states {
			args = append(args, string(st))
		}
	}
	stmt += ` ORDER BY t.id`

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ports.NewStoreError("TextAnswers", err)
	}
	defer rows.Close()

	out := make([]domain.TextAnswer, 0)
	for rows.Next() {
		var (
			a     domain.TextAnswer
			state string
		)
		c, err := scanContribution(rows, &a.ID, &a.QuestionID, &a.Answer, &state)
		if err != nil {
			return nil, ports.NewStoreError("TextAnswers", err)
		}
		a.Contribution = c
		a.State = domain.TextAnswerState(state)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError("TextAnswers", err)
	}
	return out, nil
}

// SingleResultQuestion implements ports.Store.
func (s *SQLStore) SingleResultQuestion(ctx context.Context) (domain.Question, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT q.id, q.type, q.text, q.allows_additional_textanswers
FROM questions q
JOIN questionnaires qn ON qn.id = q.questionnaire_id
WHERE qn.is_single_result = $1
ORDER BY q.position, q.id
LIMIT 1`, true)

	var (
		q     domain.Question
		qType int64
	)
	if err := row.Scan(&q.ID, &qType, &q.Text, &q.AllowsAdditionalTextAnswers); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Question{}, ports.NewStoreError("SingleResultQuestion", ports.ErrNotFound)
		}
		return domain.Question{}, ports.NewStoreError("SingleResultQuestion", err)
	}
	q.Type = domain.QuestionType(qType)
	return q, nil
}

// CourseEvaluations implements ports.Store.
func (s *SQLStore) CourseEvaluations(ctx context.Context, courseID int64) ([]domain.Evaluation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, course_id, name, state, weight, is_single_result, num_participants, num_voters
FROM evaluations
WHERE course_id = $1
ORDER BY id`, courseID)
	if err != nil {
		return nil, ports.NewStoreError("CourseEvaluations", err)
	}
	defer rows.Close()

	var out []domain.Evaluation
	for rows.Next() {
		var (
			e     domain.Evaluation
			state int64
		)
		if err := rows.Scan(&e.ID, &e.CourseID, &e.Name, &state, &e.Weight,
			&e.IsSingleResult, &e.NumParticipants, &e.NumVoters); err != nil {
			return nil, ports.NewStoreError("CourseEvaluations", err)
		}
		e.State = domain.EvaluationState(state)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError("CourseEvaluations", err)
	}
	return out, nil
}

// GeneralTextAnswerContributors implements ports.Store.
func (s *SQLStore) GeneralTextAnswerContributors(ctx context.Context, evaluationID int64) ([]domain.User, error) {
	return s.queryUsers(ctx, "GeneralTextAnswerContributors", `
SELECT DISTINCT `+userColumns+`
FROM contributions c
JOIN users u ON u.id = c.contributor_id
WHERE c.evaluation_id = $1 AND c.textanswer_visibility = $2
ORDER BY u.id`, evaluationID, string(domain.VisibilityGeneralTextAnswers))
}

// CourseResponsibles implements ports.Store.
func (s *SQLStore) CourseResponsibles(ctx context.Context, courseID int64) ([]domain.User, error) {
	return s.queryUsers(ctx, "CourseResponsibles", `
SELECT `+userColumns+`
FROM course_responsibles r
JOIN users u ON u.id = r.user_id
WHERE r.course_id = $1
ORDER BY u.id`, courseID)
}

// DelegatesOf implements ports.Store.
func (s *SQLStore) DelegatesOf(ctx context.Context, userIDs []int64) ([]domain.User, error) {
	if len(userIDs) == 0 {
		return []domain.User{}, nil
	}
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}
	return s.queryUsers(ctx, "DelegatesOf", `
SELECT DISTINCT `+userColumns+`
FROM delegations d
JOIN users u ON u.id = d.delegate_id
WHERE d.user_id IN (`+placeholders(1, len(userIDs))+`)
ORDER BY u.id`, args...)
}

func (s *SQLStore) queryUsers(ctx context.Context, query, stmt string, args ...any) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ports.NewStoreError(query, err)
	}
	defer rows.Close()

	out := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, ports.NewStoreError(query, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, ports.NewStoreError(query, err)
	}
	return out, nil
}
