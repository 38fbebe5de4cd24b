package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harborwell/insurance-backend/internal/logger"
	"github.com/harborwell/insurance-backend/internal/requestdata"
	"github.com/harborwell/insurance-backend/internal/types"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, secret, role string, userID, orgID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":             userID.String(),
		"organization_id": orgID.String(),
		"role":            role,
		"iat":             now.Unix(),
		"exp":             now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func testRouter(t *testing.T, roles ...string) (*gin.Engine, *requestdata.RequestData) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.NewNop(), testSecret)

	var captured requestdata.RequestData
	router := gin.New()
	chain := []gin.HandlerFunc{am.RequireAuth()}
	if len(roles) > 0 {
		chain = append(chain, am.RequireRoles(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
			captured = *rd
		}
		c.Status(http.StatusOK)
	})
	router.GET("/protected", chain...)
	return router, &captured
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	router, captured := testRouter(t)
	userID, orgID := uuid.New(), uuid.New()
	token := signToken(t, testSecret, types.RoleAgent, userID, orgID, time.Hour)

	w := doRequest(router, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if captured.UserID != userID || captured.OrganizationID != orgID {
		t.Error("principal not propagated to handler context")
	}
	if captured.TokenString != token {
		t.Error("raw token not retained for downstream reference checks")
	}
}

func TestRequireAuthRejections(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()
	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"wrong key", "Bearer " + signTokenRaw(t, "other-secret", userID, orgID, time.Hour)},
		{"expired", "Bearer " + signTokenRaw(t, testSecret, userID, orgID, -time.Hour)},
		{"garbage", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := testRouter(t)
			w := doRequest(router, tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func signTokenRaw(t *testing.T, secret string, userID, orgID uuid.UUID, ttl time.Duration) string {
	return signToken(t, secret, types.RoleAgent, userID, orgID, ttl)
}

func TestRequireRoles(t *testing.T) {
	userID, orgID := uuid.New(), uuid.New()

	router, _ := testRouter(t, types.RoleAdjuster, types.RoleAdmin)

	agent := signToken(t, testSecret, types.RoleAgent, userID, orgID, time.Hour)
	if w := doRequest(router, "Bearer "+agent); w.Code != http.StatusForbidden {
		t.Errorf("agent status = %d, want 403", w.Code)
	}

	adjuster := signToken(t, testSecret, types.RoleAdjuster, userID, orgID, time.Hour)
	if w := doRequest(router, "Bearer "+adjuster); w.Code != http.StatusOK {
		t.Errorf("adjuster status = %d, want 200", w.Code)
	}

	admin := signToken(t, testSecret, types.RoleAdmin, userID, orgID, time.Hour)
	if w := doRequest(router, "Bearer "+admin); w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}
}
