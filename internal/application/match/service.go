package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/infrastructure/allocation"
	"github.com/rarepair-api/internal/infrastructure/smtp"
	"github.com/rarepair-api/internal/infrastructure/sns"
	"github.com/rarepair-api/internal/pkg/id"
	"github.com/rarepair-api/internal/pkg/keymutex"
)

type matchStore interface {
	Put(ctx context.Context, m *domain.Match) error
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	CommitScore(ctx context.Context, matchID string, score float64, decision, explanation, status string, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, matchID, status string, updatedAt time.Time) error
	HardDelete(ctx context.Context, matchID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type Service interface {
	// CreatePending registers a new donor–recipient pairing in the pending
	// state. Both participants must exist and be distinct.
	CreatePending(ctx context.Context, req *domain.CreateMatchRequest) (*domain.Match, error)
	// Score evaluates the pairing against the external allocation service
	// and commits the score, decision, explanation and resulting status as
	// one write. Only a pending match may be scored; any other status is a
	// domain.ErrConflict. On scorer failure the match is left untouched and
	// domain.ErrScoringUnavailable surfaces to the caller.
	Score(ctx context.Context, matchID string) (*domain.Match, error)
	// SetStatus overrides the match status (operator action). Any known
	// status may be set from any current status.
	SetStatus(ctx context.Context, matchID, status string) (*domain.Match, error)
	Get(ctx context.Context, matchID string) (*domain.Match, error)
	Delete(ctx context.Context, matchID string) error
}

type service struct {
	matches       matchStore
	users         userStore
	notifications notificationStore
	scorer        allocation.Scorer
	mailer        smtp.Mailer
	sms           sns.SMSSender
	locks         *keymutex.KeyMutex
	now           func() time.Time
}

// NewService wires the match lifecycle. mailer and sms may be nil; scoring
// then still commits and only the corresponding notification channel is
// skipped.
func NewService(matches matchStore, users userStore, notifications notificationStore, scorer allocation.Scorer, mailer smtp.Mailer, sms sns.SMSSender) Service {
	return &service{
		matches:       matches,
		users:         users,
		notifications: notifications,
		scorer:        scorer,
		mailer:        mailer,
		sms:           sms,
		locks:         keymutex.New(),
		now:           time.Now,
	}
}

func (s *service) CreatePending(ctx context.Context, req *domain.CreateMatchRequest) (*domain.Match, error) {
	if req.DonorID == req.RecipientID {
		return nil, fmt.Errorf("donor and recipient must differ: %w", domain.ErrInvalidArgument)
	}

	donor, err := s.users.Get(ctx, req.DonorID)
	if err != nil {
		return nil, fmt.Errorf("donor %s: %w", req.DonorID, err)
	}
	if donor.Role != domain.RoleDonor {
		return nil, fmt.Errorf("user %s is not a donor: %w", req.DonorID, domain.ErrInvalidArgument)
	}
	recipient, err := s.users.Get(ctx, req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("recipient %s: %w", req.RecipientID, err)
	}
	if recipient.Role != domain.RoleRecipient {
		return nil, fmt.Errorf("user %s is not a recipient: %w", req.RecipientID, domain.ErrInvalidArgument)
	}

	now := s.now().UTC()
	m := &domain.Match{
		MatchID:     id.New(),
		DonorID:     req.DonorID,
		RecipientID: req.RecipientID,
		Status:      domain.MatchStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.matches.Put(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Score(ctx context.Context, matchID string) (*domain.Match, error) {
	// One scoring run per match at a time; a concurrent delete or second
	// score call waits for the commit to land.
	s.locks.Lock(matchID)
	defer s.locks.Unlock(matchID)

	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	// Scoring only ever moves a pending match; once it has landed on
	// approved, waitlist or completed, a new scorer verdict must not flip
	// it (operators use SetStatus for that). Re-running on a match still
	// pending is allowed.
	if m.Status != domain.MatchStatusPending {
		return nil, fmt.Errorf("match already %s: %w", m.Status, domain.ErrConflict)
	}

	donor, err := s.users.Get(ctx, m.DonorID)
	if err != nil {
		return nil, fmt.Errorf("donor %s: %w", m.DonorID, err)
	}
	recipient, err := s.users.Get(ctx, m.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("recipient %s: %w", m.RecipientID, err)
	}

	result, err := s.scorer.Evaluate(ctx, donorProfile(donor), recipientProfile(recipient))
	if err != nil {
		return nil, err
	}

	status := decisionToStatus(result.AllocationDecision)
	updatedAt := s.now().UTC()
	if err := s.matches.CommitScore(ctx, matchID, result.SurvivalScore, result.AllocationDecision, result.Explanation, status, updatedAt); err != nil {
		return nil, err
	}

	m.SurvivalScore = &result.SurvivalScore
	m.AllocationDecision = &result.AllocationDecision
	m.Explanation = &result.Explanation
	m.Status = status
	m.UpdatedAt = updatedAt

	s.notifyScored(ctx, m, donor, recipient)
	return m, nil
}

func (s *service) SetStatus(ctx context.Context, matchID, status string) (*domain.Match, error) {
	if !domain.ValidMatchStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrInvalidArgument)
	}

	s.locks.Lock(matchID)
	defer s.locks.Unlock(matchID)

	if err := s.matches.UpdateStatus(ctx, matchID, status, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.matches.Get(ctx, matchID)
}

func (s *service) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	return s.matches.Get(ctx, matchID)
}

func (s *service) Delete(ctx context.Context, matchID string) error {
	s.locks.Lock(matchID)
	defer s.locks.Unlock(matchID)
	return s.matches.HardDelete(ctx, matchID)
}

// decisionToStatus maps the scorer's free-form decision label onto a match
// status. Only an explicit approval approves; anything else, including
// labels this service has never seen, lands on the waitlist.
func decisionToStatus(decision string) string {
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case "approved", "approve":
		return domain.MatchStatusApproved
	default:
		return domain.MatchStatusWaitlist
	}
}

func donorProfile(u *domain.User) allocation.DonorProfile {
	return allocation.DonorProfile{
		ID:             u.UserID,
		BloodType:      u.BloodType,
		Age:            u.Age,
		Location:       u.City,
		GeneticMarkers: u.GeneticMarkers,
	}
}

func recipientProfile(u *domain.User) allocation.RecipientProfile {
	return allocation.RecipientProfile{
		ID:             u.UserID,
		BloodType:      u.BloodType,
		Age:            u.Age,
		Urgency:        u.Urgency,
		Location:       u.City,
		GeneticMarkers: u.GeneticMarkers,
	}
}

// notifyScored fans the scoring outcome out to both participants. Every
// channel is best effort; a failed notification never fails the scoring
// call, since the score is already committed.
func (s *service) notifyScored(ctx context.Context, m *domain.Match, donor, recipient *domain.User) {
	title := "Match update"
	body := fmt.Sprintf("Your match is now %s (survival score %.1f).", m.Status, *m.SurvivalScore)
	if m.Status == domain.MatchStatusApproved {
		title = "Match approved"
	}

	for _, u := range []*domain.User{donor, recipient} {
		n := &domain.Notification{
			NotificationID: id.New(),
			UserID:         u.UserID,
			Title:          title,
			Body:           body,
			MatchID:        m.MatchID,
			CreatedAt:      s.now().UTC(),
		}
		if err := s.notifications.Put(ctx, n); err != nil {
			slog.Warn("failed to store match notification", "match_id", m.MatchID, "user_id", u.UserID, "err", err)
		}
		if s.mailer != nil {
			if err := s.mailer.SendEmail(u.Email, title, matchEmailBody(m)); err != nil {
				slog.Warn("failed to email match update", "match_id", m.MatchID, "user_id", u.UserID, "err", err)
			}
		}
		if s.sms != nil && m.Status == domain.MatchStatusApproved && u.Phone != nil && *u.Phone != "" {
			if err := s.sms.SendSMS(ctx, *u.Phone, body); err != nil {
				slog.Warn("failed to text match approval", "match_id", m.MatchID, "user_id", u.UserID, "err", err)
			}
		}
	}
}

func matchEmailBody(m *domain.Match) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1976d2;">RarePair Match Update</h2>
  <p>A match you are part of has been evaluated.</p>
  <p><b>Status:</b> %s</p>
  <p><b>Survival score:</b> %.1f</p>
  <p>%s</p>
</div>`, m.Status, *m.SurvivalScore, *m.Explanation)
}
