package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-evalstats/internal/domain"
	"github.com/ahrav/go-evalstats/internal/ports"
	"github.com/ahrav/go-evalstats/internal/testutils"
)

func TestView_Valid(t *testing.T) {
	for _, v := range []View{ViewPublic, ViewExport, ViewFull, ViewRatings} {
		assert.True(t, v.Valid(), v)
	}
	assert.False(t, View("").Valid())
	assert.False(t, View("FULL").Valid())
}

func TestTextAnswerPolicy_VisibleTo(t *testing.T) {
	ctx := context.Background()

	erik := domain.User{ID: 12, FirstName: "Erik", LastName: "Ärger"}
	proxy := domain.User{ID: 13, FirstName: "Lab", LastName: "Staff", IsProxyUser: true}
	frank := domain.User{ID: 14, FirstName: "Frank", LastName: "Ernst"}

	general := domain.Contribution{ID: 100, EvaluationID: 1, CourseID: testCourseID}
	aliceContribution := domain.Contribution{
		ID: 200, EvaluationID: 1, CourseID: testCourseID,
		Contributor: &alice, TextAnswerVisibility: domain.VisibilityGeneralTextAnswers,
	}
	eveContribution := domain.Contribution{ID: 201, EvaluationID: 1, CourseID: testCourseID, Contributor: &eve}

	newStore := func() *testutils.MemoryStore {
		return testutils.NewMemoryStore().
			AddContribution(general).
			AddContribution(aliceContribution).
			AddContribution(eveContribution).
			AddCourseResponsibles(testCourseID, bob, erik, alice, proxy).
			AddDelegates(alice.ID, dave).
			AddDelegates(bob.ID, alice, dave).
			AddDelegates(proxy.ID, frank)
	}

	t.Run("general contribution", func(t *testing.T) {
		policy := NewTextAnswerPolicy(newStore())

		info, err := policy.VisibleTo(ctx, general)
		require.NoError(t, err)

		// Accented names sort next to their base letter.
		assert.Equal(t, []domain.User{bob, erik, proxy, alice}, info.VisibleByContribution)
		assert.Equal(t, 1, info.VisibleByDelegationCount, "only dave counts; alice is a direct reader and frank represents a proxy")
	})

	t.Run("contributor contribution", func(t *testing.T) {
		store := newStore().AddDelegates(eve.ID, carol, dave)
		policy := NewTextAnswerPolicy(store)

		info, err := policy.VisibleTo(ctx, eveContribution)
		require.NoError(t, err)
		assert.Equal(t, []domain.User{eve}, info.VisibleByContribution)
		assert.Equal(t, 2, info.VisibleByDelegationCount)
		assert.Zero(t, store.Calls("CourseResponsibles"))
	})

	t.Run("proxy contributor", func(t *testing.T) {
		store := newStore()
		proxyContribution := domain.Contribution{ID: 202, EvaluationID: 1, CourseID: testCourseID, Contributor: &proxy}

		info, err := NewTextAnswerPolicy(store).VisibleTo(ctx, proxyContribution)
		require.NoError(t, err)
		assert.Zero(t, info.VisibleByDelegationCount)
		assert.Zero(t, store.Calls("DelegatesOf"))
	})

	t.Run("store failure", func(t *testing.T) {
		errBoom := errors.New("boom")
		store := newStore().FailQuery("CourseResponsibles", errBoom)

		_, err := NewTextAnswerPolicy(store).VisibleTo(ctx, general)
		assert.ErrorIs(t, err, errBoom)
		assert.ErrorContains(t, err, "course responsibles")
	})
}

func TestTextAnswerPolicy_CanBeSeenBy(t *testing.T) {
	general := domain.Contribution{ID: 100, EvaluationID: 1, CourseID: testCourseID}
	aliceContribution := domain.Contribution{
		ID: 200, EvaluationID: 1, CourseID: testCourseID,
		Contributor: &alice, TextAnswerVisibility: domain.VisibilityGeneralTextAnswers,
	}
	eveContribution := domain.Contribution{ID: 201, EvaluationID: 1, CourseID: testCourseID, Contributor: &eve}

	store := testutils.NewMemoryStore().
		AddContribution(general).
		AddContribution(aliceContribution).
		AddContribution(eveContribution).
		AddCourseResponsibles(testCourseID, bob)
	policy := NewTextAnswerPolicy(store)

	generalAnswer := domain.TextAnswer{ID: 1, Contribution: general, State: domain.TextAnswerPublished}
	aliceAnswer := domain.TextAnswer{ID: 2, Contribution: aliceContribution, State: domain.TextAnswerPublished}
	alicePrivate := domain.TextAnswer{ID: 3, Contribution: aliceContribution, State: domain.TextAnswerPrivate}
	generalPrivate := domain.TextAnswer{ID: 4, Contribution: general, State: domain.TextAnswerPrivate}

	tests := []struct {
		name        string
		user        domain.User
		represented []domain.User
		answer      domain.TextAnswer
		view        View
		want        bool
	}{
		{name: "public view hides everything", user: carol, represented: []domain.User{carol}, answer: generalAnswer, view: ViewPublic, want: false},
		{name: "reviewer sees private answers", user: carol, represented: []domain.User{carol}, answer: alicePrivate, view: ViewFull, want: true},
		{name: "reviewer on ratings view", user: carol, represented: []domain.User{carol}, answer: generalAnswer, view: ViewRatings, want: true},
		{name: "export skips private answers", user: alice, represented: []domain.User{alice}, answer: alicePrivate, view: ViewExport, want: false},
		{name: "export skips reviewer privileges", user: carol, represented: []domain.User{carol}, answer: aliceAnswer, view: ViewExport, want: false},
		{name: "export of own answers", user: alice, represented: []domain.User{alice}, answer: aliceAnswer, view: ViewExport, want: true},
		{name: "export of represented contributor", user: dave, represented: []domain.User{dave, alice}, answer: aliceAnswer, view: ViewExport, want: false},
		{name: "export of general answers", user: bob, represented: []domain.User{bob}, answer: generalAnswer, view: ViewExport, want: true},
		{name: "contributor sees private answers", user: alice, represented: []domain.User{alice}, answer: alicePrivate, view: ViewFull, want: true},
		{name: "delegate does not see private answers", user: dave, represented: []domain.User{dave, alice}, answer: alicePrivate, view: ViewFull, want: false},
		{name: "private general answers have no contributor", user: bob, represented: []domain.User{bob}, answer: generalPrivate, view: ViewFull, want: false},
		{name: "delegate sees represented contributor", user: dave, represented: []domain.User{dave, alice}, answer: aliceAnswer, view: ViewFull, want: true},
		{name: "others do not see contributor answers", user: bob, represented: []domain.User{bob}, answer: aliceAnswer, view: ViewFull, want: false},
		{name: "course responsible sees general answers", user: bob, represented: []domain.User{bob}, answer: generalAnswer, view: ViewFull, want: true},
		{name: "general visibility through delegation", user: dave, represented: []domain.User{dave, alice}, answer: generalAnswer, view: ViewFull, want: true},
		{name: "own visibility excludes general answers", user: eve, represented: []domain.User{eve}, answer: generalAnswer, view: ViewFull, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.CanBeSeenBy(context.Background(), tt.user, tt.represented, tt.answer, tt.view)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextAnswerPolicy_CanBeSeenBy_Errors(t *testing.T) {
	ctx := context.Background()
	general := domain.Contribution{ID: 100, EvaluationID: 1, CourseID: testCourseID}
	store := testutils.NewMemoryStore().AddContribution(general)
	policy := NewTextAnswerPolicy(store)

	for _, state := range []domain.TextAnswerState{domain.TextAnswerHidden, domain.TextAnswerNotReviewed} {
		t.Run(string(state), func(t *testing.T) {
			answer := domain.TextAnswer{ID: 1, Contribution: general, State: state}
			_, err := policy.CanBeSeenBy(ctx, carol, []domain.User{carol}, answer, ViewFull)
			assert.ErrorIs(t, err, domain.ErrInvalidTextAnswerState)
		})
	}

	t.Run("unknown view", func(t *testing.T) {
		answer := domain.TextAnswer{ID: 1, Contribution: general, State: domain.TextAnswerPublished}
		_, err := policy.CanBeSeenBy(ctx, carol, []domain.User{carol}, answer, View("print"))
		assert.ErrorIs(t, err, ErrUnknownView)
	})

	t.Run("store failure", func(t *testing.T) {
		errBoom := errors.New("boom")
		store.FailQuery("GeneralTextAnswerContributors", errBoom)
		answer := domain.TextAnswer{ID: 1, Contribution: general, State: domain.TextAnswerPublished}

		_, err := policy.CanBeSeenBy(ctx, bob, []domain.User{bob}, answer, ViewFull)
		var storeErr *ports.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.ErrorIs(t, err, errBoom)
	})
}
