package refcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/harborwell/insurance-backend/internal/logger"
)

// Entity is the slice of a remote entity the validator cares about: enough to
// check eligibility here and tenant ownership in the orchestrator.
type Entity struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Status         string    `json:"status"`
}

// Result of a reference validation. When Valid is false the reason is not
// exposed: a missing entity, a wrong status, a non-2xx response and an
// unreachable service all look the same to the caller.
type Result struct {
	Valid  bool
	Entity *Entity
}

// ReferenceValidator confirms that an entity owned by another service exists
// and is in the required state. The caller's bearer token is forwarded
// unchanged; the owning service authenticates it independently.
type ReferenceValidator interface {
	Validate(ctx context.Context, id uuid.UUID, bearerToken string) Result
}

type envelope struct {
	Success bool   `json:"success"`
	Data    Entity `json:"data"`
}

type httpValidator struct {
	log            *logger.Logger
	client         *http.Client
	baseURL        string
	resourcePath   string
	requiredStatus string
}

// NewHTTPValidator builds a validator that reads
// GET {baseURL}/api/v1/{resourcePath}/{id} from the owning service. An empty
// requiredStatus skips the status check. The timeout bounds the whole call;
// on expiry the reference is simply reported invalid, never retried.
func NewHTTPValidator(log *logger.Logger, baseURL, resourcePath, requiredStatus string, timeout time.Duration) ReferenceValidator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpValidator{
		log:            log.With("validator", resourcePath),
		client:         &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		resourcePath:   resourcePath,
		requiredStatus: requiredStatus,
	}
}

func (v *httpValidator) Validate(ctx context.Context, id uuid.UUID, bearerToken string) Result {
	url := fmt.Sprintf("%s/api/v1/%s/%s", v.baseURL, v.resourcePath, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		v.log.Warn("Reference check request build failed", "error", err)
		return Result{Valid: false}
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Warn("Reference check call failed", "url", url, "error", err)
		return Result{Valid: false}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		v.log.Debug("Reference check non-2xx", "url", url, "status", resp.StatusCode)
		return Result{Valid: false}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		v.log.Warn("Reference check body decode failed", "url", url, "error", err)
		return Result{Valid: false}
	}
	if !env.Success || env.Data.ID == uuid.Nil {
		return Result{Valid: false}
	}
	if v.requiredStatus != "" && env.Data.Status != v.requiredStatus {
		v.log.Debug("Referenced entity not in required state",
			"resource", v.resourcePath, "status", env.Data.Status, "required", v.requiredStatus)
		return Result{Valid: false}
	}
	entity := env.Data
	return Result{Valid: true, Entity: &entity}
}
