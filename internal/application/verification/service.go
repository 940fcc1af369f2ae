package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/infrastructure/smtp"
	"github.com/rarepair-api/internal/pkg/keymutex"
)

// codeTTL is the verification window for an issued code.
const codeTTL = 10 * time.Minute

const emailSubject = "Your RarePair verification code"

// CodeStore holds at most one outstanding code per identity. Absence is a
// normal result (domain.ErrNotFound), not a store failure.
type CodeStore interface {
	Put(ctx context.Context, v *domain.VerificationCode) error
	Get(ctx context.Context, identity string) (*domain.VerificationCode, error)
	Delete(ctx context.Context, identity string) error
}

type Service interface {
	// Issue generates and emails a fresh code for identity, replacing any
	// prior live code, and returns the expiry instant.
	Issue(ctx context.Context, identity string) (time.Time, error)
	// Verify consumes the stored code. Fails with domain.ErrNotFound,
	// ErrExpired or ErrMismatch; success is single-use.
	Verify(ctx context.Context, identity, submitted string) error
}

type service struct {
	codes  CodeStore
	mailer smtp.Mailer
	locks  *keymutex.KeyMutex
	now    func() time.Time
}

func NewService(codes CodeStore, mailer smtp.Mailer) Service {
	return &service{
		codes:  codes,
		mailer: mailer,
		locks:  keymutex.New(),
		now:    time.Now,
	}
}

func (s *service) Issue(ctx context.Context, identity string) (time.Time, error) {
	if identity == "" {
		return time.Time{}, fmt.Errorf("identity required: %w", domain.ErrBadRequest)
	}

	// Serialized against Verify for the same identity so a reissue
	// deterministically invalidates any in-flight verification.
	s.locks.Lock(identity)
	defer s.locks.Unlock(identity)

	code, err := generateCode()
	if err != nil {
		return time.Time{}, err
	}

	now := s.now()
	expiresAt := now.Add(codeTTL)
	v := &domain.VerificationCode{
		Identity:  identity,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: expiresAt.Unix(),
	}
	if err := s.codes.Put(ctx, v); err != nil {
		return time.Time{}, err
	}

	if err := s.mailer.SendEmail(identity, emailSubject, codeEmailBody(code)); err != nil {
		// The code stays stored: if the mail was actually delivered the
		// user can still verify; the caller is told the send did not confirm.
		slog.Warn("verification email send failed", "identity", identity, "err", err)
		return time.Time{}, fmt.Errorf("send verification email: %w", domain.ErrDeliveryFailed)
	}
	return expiresAt, nil
}

func (s *service) Verify(ctx context.Context, identity, submitted string) error {
	s.locks.Lock(identity)
	defer s.locks.Unlock(identity)

	v, err := s.codes.Get(ctx, identity)
	if err != nil {
		return err
	}

	if s.now().Unix() > v.ExpiresAt {
		// Drop the dead entry so repeated expired attempts observe the
		// same store state (NotFound from here on).
		if err := s.codes.Delete(ctx, identity); err != nil {
			slog.Warn("failed to delete expired code", "identity", identity, "err", err)
		}
		return fmt.Errorf("code expired: %w", domain.ErrExpired)
	}

	if v.Code != submitted {
		return fmt.Errorf("wrong code: %w", domain.ErrMismatch)
	}

	// Single-use: the code must be gone before success is reported, or a
	// concurrent replay could consume it twice.
	if err := s.codes.Delete(ctx, identity); err != nil {
		return fmt.Errorf("consume code: %w", err)
	}
	return nil
}

// generateCode returns a uniformly random 6-digit decimal string in
// [100000, 999999] — a leading zero is excluded by construction.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

func codeEmailBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1976d2;">RarePair Verification</h2>
  <p>Your verification code is:</p>
  <h1 style="color: #1976d2; font-size: 32px; letter-spacing: 5px;">%s</h1>
  <p>This code is valid for 10 minutes.</p>
  <p>If you didn't request this code, please ignore this email.</p>
</div>`, code)
}
