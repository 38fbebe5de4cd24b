package refcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/types"
)

// PolicyDraft is the payload quote conversion sends to policy-service. The
// quote's computed premium is carried over as-is, never recomputed.
type PolicyDraft struct {
	PolicyNumber   string    `json:"policyNumber"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Premium        float64   `json:"premium"`
	CoverageAmount float64   `json:"coverageAmount"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// PolicyCreator creates a policy through the owning service's own workflow.
// No service writes another service's tables directly.
type PolicyCreator interface {
	CreatePolicy(ctx context.Context, bearerToken string, draft PolicyDraft) (*types.Policy, error)
}

type httpPolicyCreator struct {
	log     *logger.Logger
	client  *http.Client
	baseURL string
}

func NewHTTPPolicyCreator(log *logger.Logger, baseURL string, timeout time.Duration) PolicyCreator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpPolicyCreator{
		log:     log.With("client", "PolicyCreator"),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (pc *httpPolicyCreator) CreatePolicy(ctx context.Context, bearerToken string, draft PolicyDraft) (*types.Policy, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("marshal policy draft: %w", err)
	}
	url := pc.baseURL + "/api/v1/policies"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build policy create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := pc.client.Do(req)
	if err != nil {
		pc.log.Warn("Policy create call failed", "error", err)
		return nil, fmt.Errorf("policy service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		pc.log.Warn("Policy create rejected by policy service", "status", resp.StatusCode)
		return nil, fmt.Errorf("policy service returned %d", resp.StatusCode)
	}

	var env struct {
		Success bool         `json:"success"`
		Data    types.Policy `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode policy create response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("policy service reported failure")
	}
	policy := env.Data
	return &policy, nil
}
