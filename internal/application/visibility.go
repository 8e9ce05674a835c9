package application

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
)

// View is the presentation context a text answer is requested for.
type View string

// Supported views.
const (
	// ViewPublic is the anonymous results page; it never shows text answers.
	ViewPublic View = "public"
	// ViewExport is the spreadsheet export. It omits private answers and
	// answers about other contributors.
	ViewExport View = "export"
	// ViewFull is the complete results page of an authorized user.
	ViewFull View = "full"
	// ViewRatings is the results page restricted to rating answers.
	ViewRatings View = "ratings"
)

// ErrUnknownView indicates a view outside the supported set.
var ErrUnknownView = errors.New("unknown view")

// Valid reports whether v is one of the supported views.
func (v View) Valid() bool {
	switch v {
	case ViewPublic, ViewExport, ViewFull, ViewRatings:
		return true
	default:
		return false
	}
}

// TextAnswerPolicy decides who may read text answers. VisibleTo and
// CanBeSeenBy apply the same rules: the first lists the readers of a
// contribution's answers, the second checks one reader and one answer.
type TextAnswerPolicy struct {
	store ports.Store
	// tag selects the collation used to order reader names.
	tag language.Tag
}

// NewTextAnswerPolicy creates a policy reading delegations, visibility
// settings and course responsibilities from store. Names are ordered with
// the root collation, which sorts accented letters next to their base letter.
func NewTextAnswerPolicy(store ports.Store) *TextAnswerPolicy {
	return &TextAnswerPolicy{store: store, tag: language.Und}
}

// VisibleTo returns the users who can read the text answers of contribution
// directly, ordered by last name and first name, and the number of further
// users who read them through a delegation.
//
// For the general contribution the readers are the contributors granted
// VisibilityGeneralTextAnswers on the evaluation plus the responsibles of
// the course. For any other contribution it is the contributor alone.
// Delegates of proxy users are not counted.
func (p *TextAnswerPolicy) VisibleTo(
	ctx context.Context,
	contribution domain.Contribution,
) (domain.TextAnswerVisibilityInfo, error) {
	var users []domain.User
	if contribution.IsGeneral() {
		general, err := p.store.GeneralTextAnswerContributors(ctx, contribution.EvaluationID)
		if err != nil {
			return domain.TextAnswerVisibilityInfo{}, fmt.Errorf("failed to load general text answer readers: %w", err)
		}
		responsibles, err := p.store.CourseResponsibles(ctx, contribution.CourseID)
		if err != nil {
			return domain.TextAnswerVisibilityInfo{}, fmt.Errorf("failed to load course responsibles: %w", err)
		}
		users = distinctUsers(general, responsibles)
		p.sortByName(users)
	} else {
		users = []domain.User{*contribution.Contributor}
	}

	visible := make(map[int64]struct{}, len(users))
	nonProxyIDs := make([]int64, 0, len(users))
	for _, u := range users {
		visible[u.ID] = struct{}{}
		if !u.IsProxyUser {
			nonProxyIDs = append(nonProxyIDs, u.ID)
		}
	}

	delegationCount := 0
	if len(nonProxyIDs) > 0 {
		delegates, err := p.store.DelegatesOf(ctx, nonProxyIDs)
		if err != nil {
			return domain.TextAnswerVisibilityInfo{}, fmt.Errorf("failed to load delegates: %w", err)
		}
		counted := make(map[int64]struct{}, len(delegates))
		for _, d := range delegates {
			if _, ok := visible[d.ID]; ok {
				continue
			}
			counted[d.ID] = struct{}{}
		}
		delegationCount = len(counted)
	}

	return domain.TextAnswerVisibilityInfo{
		VisibleByContribution:    users,
		VisibleByDelegationCount: delegationCount,
	}, nil
}

// CanBeSeenBy reports whether user may read answer in view. represented
// lists the users whose results user may see: user itself and everyone who
// delegated to them.
//
// The answer must be private or published; any other state returns
// ErrInvalidTextAnswerState since unreviewed or hidden answers never reach
// a results page.
func (p *TextAnswerPolicy) CanBeSeenBy(
	ctx context.Context,
	user domain.User,
	represented []domain.User,
	answer domain.TextAnswer,
	view View,
) (bool, error) {
	if !answer.IsPrivate() && !answer.IsPublished() {
		return false, fmt.Errorf("%w: answer=%d, state=%s", domain.ErrInvalidTextAnswerState, answer.ID, answer.State)
	}
	if !view.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	contribution := answer.Contribution

	switch view {
	case ViewPublic:
		return false, nil
	case ViewExport:
		if answer.IsPrivate() {
			return false, nil
		}
		if !contribution.IsGeneral() && !contribution.IsContributor(user) {
			return false, nil
		}
	default:
		if user.IsReviewer {
			return true, nil
		}
	}

	if answer.IsPrivate() {
		return contribution.IsContributor(user), nil
	}

	representedIDs := make(map[int64]struct{}, len(represented))
	for _, u := range represented {
		representedIDs[u.ID] = struct{}{}
	}

	if contribution.Contributor != nil {
		_, ok := representedIDs[contribution.Contributor.ID]
		return ok, nil
	}

	// General contribution: readers with general visibility and course
	// responsibles, directly or through a delegation.
	general, err := p.store.GeneralTextAnswerContributors(ctx, contribution.EvaluationID)
	if err != nil {
		return false, fmt.Errorf("failed to load general text answer readers: %w", err)
	}
	if containsAny(general, representedIDs) {
		return true, nil
	}

	responsibles, err := p.store.CourseResponsibles(ctx, contribution.CourseID)
	if err != nil {
		return false, fmt.Errorf("failed to load course responsibles: %w", err)
	}
	return containsAny(responsibles, representedIDs), nil
}

func (p *TextAnswerPolicy) sortByName(users []domain.User) {
	// Collators keep internal buffers and are not safe for concurrent use.
	c := collate.New(p.tag)
	slices.SortStableFunc(users, func(a, b domain.User) int {
		if cmp := c.CompareString(a.LastName, b.LastName); cmp != 0 {
			return cmp
		}
		return c.CompareString(a.FirstName, b.FirstName)
	})
}

// distinctUsers concatenates the groups, keeping the first occurrence of
// every user ID.
func distinctUsers(groups ...[]domain.User) []domain.User {
	seen := make(map[int64]struct{})
	out := make([]domain.User, 0)
	for _, group := range groups {
		for _, u := range group {
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

func containsAny(users []domain.User, ids map[int64]struct{}) bool {
	for _, u := range users {
		if _, ok := ids[u.ID]; ok {
			return true
		}
	}
	return false
}
