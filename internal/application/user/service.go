package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/pkg/id"
)

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, userID string) error
}

// codeVerifier consumes a previously issued email verification code.
type codeVerifier interface {
	Verify(ctx context.Context, identity, submitted string) error
}

type tokenSigner interface {
	Sign(userID, role string) (string, error)
}

type Service interface {
	// Register creates an account after consuming the email verification
	// code sent to req.Email. Returns the user and a signed session token.
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error)
	// Login authenticates by email and password. Wrong email and wrong
	// password are indistinguishable to the caller.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	Update(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type service struct {
	users    userStore
	verifier codeVerifier
	signer   tokenSigner
	now      func() time.Time
}

func NewService(users userStore, verifier codeVerifier, signer tokenSigner) Service {
	return &service{
		users:    users,
		verifier: verifier,
		signer:   signer,
		now:      time.Now,
	}
}

func (s *service) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	// The code gate runs first: a failed verification must not reveal
	// whether the email already has an account.
	if err := s.verifier.Verify(ctx, req.Email, req.Code); err != nil {
		return nil, "", err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	u := &domain.User{
		UserID:         id.New(),
		Email:          req.Email,
		PasswordHash:   string(hash),
		Role:           req.Role,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Pincode:        req.Pincode,
		BloodType:      req.BloodType,
		Age:            req.Age,
		Urgency:        req.Urgency,
		GeneticMarkers: req.GeneticMarkers,
		MedicalHistory: req.MedicalHistory,
		Allergies:      req.Allergies,
		Medications:    req.Medications,
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.signer.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("bad credentials: %w", domain.ErrUnauthorized)
	}

	token, err := s.signer.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *service) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *service) Update(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.User, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}

	updates := buildUserUpdates(req)
	if len(updates) == 0 {
		return s.users.Get(ctx, userID)
	}
	if err := s.users.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.users.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	return s.users.HardDelete(ctx, userID)
}

// buildUserUpdates collects the non-nil request fields into the column map
// the store expects. Field names follow the table attributes.
func buildUserUpdates(req *domain.UpdateUserRequest) map[string]interface{} {
	updates := map[string]interface{}{}
	setStr := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setStr("first_name", req.FirstName)
	setStr("last_name", req.LastName)
	setStr("phone", req.Phone)
	setStr("address", req.Address)
	setStr("city", req.City)
	setStr("state", req.State)
	setStr("pincode", req.Pincode)
	setStr("blood_type", req.BloodType)
	setStr("urgency", req.Urgency)
	setStr("medical_history", req.MedicalHistory)
	setStr("allergies", req.Allergies)
	setStr("medications", req.Medications)
	if req.Age != nil {
		updates["age"] = *req.Age
	}
	if req.GeneticMarkers != nil {
		updates["genetic_markers"] = req.GeneticMarkers
	}
	return updates
}
