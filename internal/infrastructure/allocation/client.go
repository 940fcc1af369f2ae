package allocation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rarepair-api/internal/config"
	"github.com/rarepair-api/internal/domain"
)

// DonorProfile carries the donor fields the external scorer needs.
type DonorProfile struct {
	ID             string   `json:"id"`
	BloodType      string   `json:"blood_type"`
	Age            int      `json:"age"`
	Location       string   `json:"location"`
	GeneticMarkers []string `json:"genetic_markers,omitempty"`
}

// RecipientProfile carries the recipient fields the external scorer needs.
type RecipientProfile struct {
	ID             string   `json:"id"`
	BloodType      string   `json:"blood_type"`
	Age            int      `json:"age"`
	Urgency        string   `json:"urgency"`
	Location       string   `json:"location"`
	GeneticMarkers []string `json:"genetic_markers,omitempty"`
}

// ScoringResult is the scorer's verdict on a pairing. AllocationDecision is
// an open string from an untrusted collaborator; the match service decides
// what it means.
type ScoringResult struct {
	SurvivalScore      float64 `json:"survival_score"`
	AllocationDecision string  `json:"allocation_decision"`
	Explanation        string  `json:"explanation"`
}

// Scorer evaluates donor/recipient compatibility via the external allocation
// service. Implementations must surface every transport failure, timeout or
// malformed response as domain.ErrScoringUnavailable and must not retry.
type Scorer interface {
	Evaluate(ctx context.Context, donor DonorProfile, recipient RecipientProfile) (*ScoringResult, error)
}

// Client calls the allocation service over HTTP with a bounded timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.MLTimeout},
		baseURL:    cfg.MLServiceURL,
	}
}

type evaluateRequest struct {
	Donor     DonorProfile     `json:"donor"`
	Recipient RecipientProfile `json:"recipient"`
}

func (c *Client) Evaluate(ctx context.Context, donor DonorProfile, recipient RecipientProfile) (*ScoringResult, error) {
	body, err := json.Marshal(evaluateRequest{Donor: donor, Recipient: recipient})
	if err != nil {
		return nil, fmt.Errorf("marshal scoring request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring service unreachable: %w", domain.ErrScoringUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service returned %d: %w", resp.StatusCode, domain.ErrScoringUnavailable)
	}

	var result ScoringResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("malformed scoring response: %w", domain.ErrScoringUnavailable)
	}
	return &result, nil
}
