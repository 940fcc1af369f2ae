package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rarepair-api/internal/domain"
)

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) Issue(ctx context.Context, identity string) (time.Time, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(time.Time), args.Error(1)
}
func (m *mockVerificationSvc) Verify(ctx context.Context, identity, submitted string) error {
	return m.Called(ctx, identity, submitted).Error(0)
}

func TestIssueCode_OK(t *testing.T) {
	expiry := time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC)
	svc := &mockVerificationSvc{}
	svc.On("Issue", mock.Anything, "a@x.com").Return(expiry, nil)

	h := NewOTPHandler(svc)
	body, _ := json.Marshal(map[string]string{"email": "a@x.com"})
	req := httptest.NewRequest(http.MethodPost, "/otp/send", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Issue(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env CodeIssuedEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "2025-06-01T12:10:00Z", env.ExpiresAt)
}

func TestIssueCode_BadEmail_FailsValidation(t *testing.T) {
	svc := &mockVerificationSvc{}
	h := NewOTPHandler(svc)

	body, _ := json.Marshal(map[string]string{"email": "not-an-email"})
	req := httptest.NewRequest(http.MethodPost, "/otp/send", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Issue(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestVerifyCode_StatusPerFailure(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrExpired, http.StatusGone, "EXPIRED"},
		{domain.ErrMismatch, http.StatusUnprocessableEntity, "MISMATCH"},
	}
	for _, tc := range cases {
		svc := &mockVerificationSvc{}
		svc.On("Verify", mock.Anything, "a@x.com", "123456").Return(tc.err)

		h := NewOTPHandler(svc)
		body, _ := json.Marshal(map[string]string{"email": "a@x.com", "code": "123456"})
		req := httptest.NewRequest(http.MethodPost, "/otp/verify", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		h.Verify(rr, req)

		assert.Equal(t, tc.status, rr.Code)
		var env MessageEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		assert.Equal(t, tc.code, env.ErrorCode)
	}
}

func TestVerifyCode_OK(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("Verify", mock.Anything, "a@x.com", "123456").Return(nil)

	h := NewOTPHandler(svc)
	body, _ := json.Marshal(map[string]string{"email": "a@x.com", "code": "123456"})
	req := httptest.NewRequest(http.MethodPost, "/otp/verify", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Verify(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
