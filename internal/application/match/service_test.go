package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/infrastructure/allocation"
)

// --- mocks ---

type mockMatchStore struct{ mock.Mock }

func (m *mockMatchStore) Put(ctx context.Context, match *domain.Match) error {
	return m.Called(ctx, match).Error(0)
}
func (m *mockMatchStore) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	args := m.Called(ctx, matchID)
	if v, _ := args.Get(0).(*domain.Match); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockMatchStore) CommitScore(ctx context.Context, matchID string, score float64, decision, explanation, status string, updatedAt time.Time) error {
	return m.Called(ctx, matchID, score, decision, explanation, status, updatedAt).Error(0)
}
func (m *mockMatchStore) UpdateStatus(ctx context.Context, matchID, status string, updatedAt time.Time) error {
	return m.Called(ctx, matchID, status, updatedAt).Error(0)
}
func (m *mockMatchStore) HardDelete(ctx context.Context, matchID string) error {
	return m.Called(ctx, matchID).Error(0)
}
func (m *mockMatchStore) FindByParticipant(ctx context.Context, donorID, recipientID string) ([]domain.Match, error) {
	args := m.Called(ctx, donorID, recipientID)
	if v, _ := args.Get(0).([]domain.Match); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if v, _ := args.Get(0).(*domain.User); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockScorer struct{ mock.Mock }

func (m *mockScorer) Evaluate(ctx context.Context, donor allocation.DonorProfile, recipient allocation.RecipientProfile) (*allocation.ScoringResult, error) {
	args := m.Called(ctx, donor, recipient)
	if v, _ := args.Get(0).(*allocation.ScoringResult); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- fixtures ---

func testDonor() *domain.User {
	return &domain.User{
		UserID: "d1", Email: "donor@x.com", Role: domain.RoleDonor,
		BloodType: "O-", Age: 34, City: "Pune",
		GeneticMarkers: []string{"HLA-A2"},
	}
}

func testRecipient() *domain.User {
	return &domain.User{
		UserID: "r1", Email: "recipient@x.com", Role: domain.RoleRecipient,
		BloodType: "O-", Age: 29, City: "Mumbai", Urgency: "high",
	}
}

func pendingMatch() *domain.Match {
	return &domain.Match{
		MatchID: "m1", DonorID: "d1", RecipientID: "r1",
		Status:    domain.MatchStatusPending,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// testClock is the fixed instant newTestService wires in, so tests can
// assert the exact stamp the service hands to the store.
var testClock = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func newTestService(matches *mockMatchStore, users *mockUserStore, notifications *mockNotificationStore, scorer *mockScorer) Service {
	svc := NewService(matches, users, notifications, scorer, nil, nil).(*service)
	svc.now = func() time.Time { return testClock }
	return svc
}

// --- CreatePending ---

func TestCreatePending_SamePersonBothSides_InvalidArgument(t *testing.T) {
	svc := newTestService(&mockMatchStore{}, &mockUserStore{}, &mockNotificationStore{}, &mockScorer{})

	_, err := svc.CreatePending(context.Background(), &domain.CreateMatchRequest{DonorID: "u1", RecipientID: "u1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestCreatePending_UnknownDonor_NotFound(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newTestService(&mockMatchStore{}, users, &mockNotificationStore{}, &mockScorer{})
	_, err := svc.CreatePending(context.Background(), &domain.CreateMatchRequest{DonorID: "ghost", RecipientID: "r1"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreatePending_RoleMismatch_InvalidArgument(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "d1").Return(testDonor(), nil)
	recipient := testRecipient()
	recipient.Role = domain.RoleDonor
	users.On("Get", mock.Anything, "r1").Return(recipient, nil)

	svc := newTestService(&mockMatchStore{}, users, &mockNotificationStore{}, &mockScorer{})
	_, err := svc.CreatePending(context.Background(), &domain.CreateMatchRequest{DonorID: "d1", RecipientID: "r1"})
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestCreatePending_StartsPending(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "d1").Return(testDonor(), nil)
	users.On("Get", mock.Anything, "r1").Return(testRecipient(), nil)

	matches := &mockMatchStore{}
	matches.On("Put", mock.Anything, mock.MatchedBy(func(m *domain.Match) bool {
		return m.Status == domain.MatchStatusPending && m.MatchID != "" && !m.Scored()
	})).Return(nil)

	svc := newTestService(matches, users, &mockNotificationStore{}, &mockScorer{})
	m, err := svc.CreatePending(context.Background(), &domain.CreateMatchRequest{DonorID: "d1", RecipientID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusPending, m.Status)
	assert.Equal(t, "d1", m.DonorID)
	assert.Equal(t, "r1", m.RecipientID)
	assert.Nil(t, m.SurvivalScore)
	matches.AssertExpectations(t)
}

// --- Score ---

func TestScore_ApprovedDecision(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "d1").Return(testDonor(), nil)
	users.On("Get", mock.Anything, "r1").Return(testRecipient(), nil)

	matches := &mockMatchStore{}
	matches.On("Get", mock.Anything, "m1").Return(pendingMatch(), nil)
	matches.On("CommitScore", mock.Anything, "m1", 82.5, "approved", "high compatibility", domain.MatchStatusApproved, testClock).Return(nil)

	scorer := &mockScorer{}
	scorer.On("Evaluate", mock.Anything,
		mock.MatchedBy(func(d allocation.DonorProfile) bool { return d.ID == "d1" && d.BloodType == "O-" }),
		mock.MatchedBy(func(r allocation.RecipientProfile) bool { return r.ID == "r1" && r.Urgency == "high" }),
	).Return(&allocation.ScoringResult{SurvivalScore: 82.5, AllocationDecision: "approved", Explanation: "high compatibility"}, nil)

	notifications := &mockNotificationStore{}
	notifications.On("Put", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.MatchID == "m1" && (n.UserID == "d1" || n.UserID == "r1")
	})).Return(nil).Twice()

	svc := newTestService(matches, users, notifications, scorer)
	m, err := svc.Score(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusApproved, m.Status)
	require.True(t, m.Scored())
	assert.Equal(t, 82.5, *m.SurvivalScore)
	assert.Equal(t, "approved", *m.AllocationDecision)
	matches.AssertExpectations(t)
	notifications.AssertExpectations(t)
}

func TestScore_UnrecognizedDecision_Waitlists(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "d1").Return(testDonor(), nil)
	users.On("Get", mock.Anything, "r1").Return(testRecipient(), nil)

	matches := &mockMatchStore{}
	matches.On("Get", mock.Anything, "m1").Return(pendingMatch(), nil)
	matches.On("CommitScore", mock.Anything, "m1", 41.0, "needs_review", "borderline", domain.MatchStatusWaitlist, testClock).Return(nil)

	scorer := &mockScorer{}
	scorer.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(&allocation.ScoringResult{SurvivalScore: 41.0, AllocationDecision: "needs_review", Explanation: "borderline"}, nil)

	notifications := &mockNotificationStore{}
	notifications.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(matches, users, notifications, scorer)
	m, err := svc.Score(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusWaitlist, m.Status)
	// The raw decision label is preserved verbatim.
	assert.Equal(t, "needs_review", *m.AllocationDecision)
	matches.AssertExpectations(t)
}

func TestScore_ScorerDown_MatchLeftUntouched(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "d1").Return(testDonor(), nil)
	users.On("Get", mock.Anything, "r1").Return(testRecipient(), nil)

	matches := &mockMatchStore{}
	matches.On("Get", mock.Anything, "m1").Return(pendingMatch(), nil)

	scorer := &mockScorer{}
	scorer.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrScoringUnavailable)

	svc := newTestService(matches, users, &mockNotificationStore{}, scorer)
	_, err := svc.Score(context.Background(), "m1")
	assert.True(t, errors.Is(err, domain.ErrScoringUnavailable))
	matches.AssertNotCalled(t, "CommitScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScore_AlreadyDecided_Conflict(t *testing.T) {
	for _, status := range []string{domain.MatchStatusApproved, domain.MatchStatusWaitlist, domain.MatchStatusCompleted} {
		score := 82.5
		decision := "approved"
		explanation := "high compatibility"
		decided := pendingMatch()
		decided.Status = status
		decided.SurvivalScore = &score
		decided.AllocationDecision = &decision
		decided.Explanation = &explanation

		matches := &mockMatchStore{}
		matches.On("Get", mock.Anything, "m1").Return(decided, nil)

		scorer := &mockScorer{}
		scorer.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
			Return(&allocation.ScoringResult{SurvivalScore: 40.0, AllocationDecision: "reject", Explanation: "bad"}, nil)

		svc := newTestService(matches, &mockUserStore{}, &mockNotificationStore{}, scorer)
		_, err := svc.Score(context.Background(), "m1")
		assert.True(t, errors.Is(err, domain.ErrConflict), "status %s", status)

		// The decided match keeps its status and committed score.
		scorer.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything, mock.Anything)
		matches.AssertNotCalled(t, "CommitScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestScore_UnknownMatch_NotFound(t *testing.T) {
	matches := &mockMatchStore{}
	matches.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := newTestService(matches, &mockUserStore{}, &mockNotificationStore{}, &mockScorer{})
	_, err := svc.Score(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestScore_NotificationFailureDoesNotFailScoring(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "d1").Return(testDonor(), nil)
	users.On("Get", mock.Anything, "r1").Return(testRecipient(), nil)

	matches := &mockMatchStore{}
	matches.On("Get", mock.Anything, "m1").Return(pendingMatch(), nil)
	matches.On("CommitScore", mock.Anything, "m1", 82.5, "approve", "ok", domain.MatchStatusApproved, testClock).Return(nil)

	scorer := &mockScorer{}
	scorer.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).
		Return(&allocation.ScoringResult{SurvivalScore: 82.5, AllocationDecision: "approve", Explanation: "ok"}, nil)

	notifications := &mockNotificationStore{}
	notifications.On("Put", mock.Anything, mock.Anything).Return(errors.New("table missing"))

	svc := newTestService(matches, users, notifications, scorer)
	m, err := svc.Score(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusApproved, m.Status)
}

func TestDecisionToStatus(t *testing.T) {
	cases := map[string]string{
		"approved":     domain.MatchStatusApproved,
		"approve":      domain.MatchStatusApproved,
		"APPROVED":     domain.MatchStatusApproved,
		" Approve ":    domain.MatchStatusApproved,
		"waitlist":     domain.MatchStatusWaitlist,
		"reject":       domain.MatchStatusWaitlist,
		"needs_review": domain.MatchStatusWaitlist,
		"":             domain.MatchStatusWaitlist,
	}
	for decision, want := range cases {
		assert.Equal(t, want, decisionToStatus(decision), "decision %q", decision)
	}
}

// --- SetStatus / Delete ---

func TestSetStatus_UnknownStatus_InvalidArgument(t *testing.T) {
	matches := &mockMatchStore{}
	svc := newTestService(matches, &mockUserStore{}, &mockNotificationStore{}, &mockScorer{})

	_, err := svc.SetStatus(context.Background(), "m1", "cancelled")
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
	matches.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatus_OverridesAnyCurrentStatus(t *testing.T) {
	updated := pendingMatch()
	updated.Status = domain.MatchStatusCompleted

	matches := &mockMatchStore{}
	matches.On("UpdateStatus", mock.Anything, "m1", domain.MatchStatusCompleted, testClock).Return(nil)
	matches.On("Get", mock.Anything, "m1").Return(updated, nil)

	svc := newTestService(matches, &mockUserStore{}, &mockNotificationStore{}, &mockScorer{})
	m, err := svc.SetStatus(context.Background(), "m1", domain.MatchStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusCompleted, m.Status)
	matches.AssertExpectations(t)
}

func TestDelete_UnknownMatch_NotFound(t *testing.T) {
	matches := &mockMatchStore{}
	matches.On("HardDelete", mock.Anything, "ghost").Return(domain.ErrNotFound)

	svc := newTestService(matches, &mockUserStore{}, &mockNotificationStore{}, &mockScorer{})
	err := svc.Delete(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
