package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rarepair-api/internal/config"
	"github.com/rarepair-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(&config.Config{MLServiceURL: url, MLTimeout: timeout})
}

func sampleProfiles() (DonorProfile, RecipientProfile) {
	donor := DonorProfile{ID: "d1", BloodType: "AB-", Age: 34, Location: "Pune", GeneticMarkers: []string{"HLA-A2"}}
	recipient := RecipientProfile{ID: "r1", BloodType: "AB-", Age: 29, Urgency: "high", Location: "Pune", GeneticMarkers: []string{"HLA-A2"}}
	return donor, recipient
}

func TestEvaluate_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)

		var req evaluateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "d1", req.Donor.ID)
		assert.Equal(t, "high", req.Recipient.Urgency)

		json.NewEncoder(w).Encode(ScoringResult{
			SurvivalScore:      82.5,
			AllocationDecision: "approve",
			Explanation:        "high compatibility",
		})
	}))
	defer srv.Close()

	donor, recipient := sampleProfiles()
	result, err := newTestClient(srv.URL, time.Second).Evaluate(context.Background(), donor, recipient)

	require.NoError(t, err)
	assert.Equal(t, 82.5, result.SurvivalScore)
	assert.Equal(t, "approve", result.AllocationDecision)
	assert.Equal(t, "high compatibility", result.Explanation)
}

func TestEvaluate_ServerError_ScoringUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	donor, recipient := sampleProfiles()
	_, err := newTestClient(srv.URL, time.Second).Evaluate(context.Background(), donor, recipient)
	assert.True(t, errors.Is(err, domain.ErrScoringUnavailable))
}

func TestEvaluate_MalformedResponse_ScoringUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	donor, recipient := sampleProfiles()
	_, err := newTestClient(srv.URL, time.Second).Evaluate(context.Background(), donor, recipient)
	assert.True(t, errors.Is(err, domain.ErrScoringUnavailable))
}

func TestEvaluate_Timeout_ScoringUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	donor, recipient := sampleProfiles()
	_, err := newTestClient(srv.URL, 50*time.Millisecond).Evaluate(context.Background(), donor, recipient)
	assert.True(t, errors.Is(err, domain.ErrScoringUnavailable))
}

func TestEvaluate_Unreachable_ScoringUnavailable(t *testing.T) {
	donor, recipient := sampleProfiles()
	_, err := newTestClient("http://127.0.0.1:1", time.Second).Evaluate(context.Background(), donor, recipient)
	assert.True(t, errors.Is(err, domain.ErrScoringUnavailable))
}
