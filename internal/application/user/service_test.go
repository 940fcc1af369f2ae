package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rarepair-api/internal/domain"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if v, _ := args.Get(0).(*domain.User); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if v, _ := args.Get(0).(*domain.User); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if v, _ := args.Get(0).([]domain.User); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) HardDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) Verify(ctx context.Context, identity, submitted string) error {
	return m.Called(ctx, identity, submitted).Error(0)
}

type stubSigner struct{}

func (stubSigner) Sign(userID, role string) (string, error) { return "token-" + userID, nil }

func registerReq() *domain.RegisterRequest {
	return &domain.RegisterRequest{
		Email:     "a@x.com",
		Code:      "123456",
		Password:  "correct horse",
		Role:      domain.RoleDonor,
		FirstName: "Asha",
		LastName:  "Rao",
		BloodType: "O-",
		Age:       34,
	}
}

// --- Register ---

func TestRegister_ConsumesCodeAndCreatesUser(t *testing.T) {
	verifier := &mockVerifier{}
	verifier.On("Verify", mock.Anything, "a@x.com", "123456").Return(nil)

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	users.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@x.com" && u.Role == domain.RoleDonor &&
			u.EmailConfirmed && u.PasswordHash != "" && u.PasswordHash != "correct horse"
	})).Return(nil)

	svc := NewService(users, verifier, stubSigner{})
	u, token, err := svc.Register(context.Background(), registerReq())
	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, "token-"+u.UserID, token)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")))
	verifier.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestRegister_BadCode_NoAccountCreated(t *testing.T) {
	for _, codeErr := range []error{domain.ErrNotFound, domain.ErrExpired, domain.ErrMismatch} {
		verifier := &mockVerifier{}
		verifier.On("Verify", mock.Anything, "a@x.com", "123456").Return(codeErr)

		users := &mockUserStore{}
		svc := NewService(users, verifier, stubSigner{})

		_, _, err := svc.Register(context.Background(), registerReq())
		assert.True(t, errors.Is(err, codeErr))
		users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	}
}

func TestRegister_DuplicateEmail_Conflict(t *testing.T) {
	verifier := &mockVerifier{}
	verifier.On("Verify", mock.Anything, "a@x.com", "123456").Return(nil)

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(users, verifier, stubSigner{})
	_, _, err := svc.Register(context.Background(), registerReq())
	assert.True(t, errors.Is(err, domain.ErrConflict))
	users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- Login ---

func TestLogin_Succeeds(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{UserID: "u1", Email: "a@x.com", Role: domain.RoleDonor, PasswordHash: string(hash)}, nil)

	svc := NewService(users, &mockVerifier{}, stubSigner{})
	u, token, err := svc.Login(context.Background(), "a@x.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	assert.Equal(t, "token-u1", token)
}

func TestLogin_WrongPasswordAndUnknownEmail_LookTheSame(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, domain.ErrNotFound)

	svc := NewService(users, &mockVerifier{}, stubSigner{})

	_, _, errWrongPass := svc.Login(context.Background(), "a@x.com", "wrong")
	_, _, errNoUser := svc.Login(context.Background(), "ghost@x.com", "whatever")
	assert.True(t, errors.Is(errWrongPass, domain.ErrUnauthorized))
	assert.True(t, errors.Is(errNoUser, domain.ErrUnauthorized))
}

// --- Update / List / Delete ---

func TestUpdate_OnlySetFieldsAreWritten(t *testing.T) {
	city := "Pune"
	age := 35

	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)
	users.On("Update", mock.Anything, "u1", map[string]interface{}{
		"city": "Pune",
		"age":  35,
	}).Return(nil)

	svc := NewService(users, &mockVerifier{}, stubSigner{})
	_, err := svc.Update(context.Background(), "u1", &domain.UpdateUserRequest{City: &city, Age: &age})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestUpdate_NoFields_NoWrite(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(users, &mockVerifier{}, stubSigner{})
	_, err := svc.Update(context.Background(), "u1", &domain.UpdateUserRequest{})
	require.NoError(t, err)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestListByRole_NoResults_EmptySlice(t *testing.T) {
	users := &mockUserStore{}
	users.On("ListByRole", mock.Anything, domain.RoleRecipient).Return(nil, nil)

	svc := NewService(users, &mockVerifier{}, stubSigner{})
	got, err := svc.ListByRole(context.Background(), domain.RoleRecipient)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDelete_UnknownUser_NotFound(t *testing.T) {
	users := &mockUserStore{}
	users.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	svc := NewService(users, &mockVerifier{}, stubSigner{})
	err := svc.Delete(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	users.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}
