package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/refcheck"
	"github.com/harborwell/insurance-backend/internal/requestdata"
	"github.com/harborwell/insurance-backend/internal/types"
)

// newTestDB opens an in-memory sqlite database unique to the test. The shared
// cache keeps all pooled connections on the same database for the test's
// lifetime.
func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func authedContext(orgID, userID uuid.UUID) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID:         userID,
		OrganizationID: orgID,
		Role:           types.RoleAdjuster,
		TokenString:    "test-bearer-token",
	})
}

// stubValidator satisfies refcheck.ReferenceValidator with a canned result and
// records what it was asked about.
type stubValidator struct {
	result    refcheck.Result
	lastID    uuid.UUID
	lastToken string
	calls     int
}

func (s *stubValidator) Validate(ctx context.Context, id uuid.UUID, bearerToken string) refcheck.Result {
	s.calls++
	s.lastID = id
	s.lastToken = bearerToken
	return s.result
}

func validFor(orgID uuid.UUID, status string) refcheck.Result {
	return refcheck.Result{
		Valid:  true,
		Entity: &refcheck.Entity{ID: uuid.New(), OrganizationID: orgID, Status: status},
	}
}

// stubPolicyCreator satisfies refcheck.PolicyCreator.
type stubPolicyCreator struct {
	policy    *types.Policy
	err       error
	calls     int
	lastDraft refcheck.PolicyDraft
}

func (s *stubPolicyCreator) CreatePolicy(ctx context.Context, bearerToken string, draft refcheck.PolicyDraft) (*types.Policy, error) {
	s.calls++
	s.lastDraft = draft
	if s.err != nil {
		return nil, s.err
	}
	return s.policy, nil
}
