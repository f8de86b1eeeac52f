package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func clientToken(t *testing.T, username string, roles ...string) string {
	t.Helper()

	roleList := make([]any, len(roles))
	for i, r := range roles {
		roleList[i] = r
	}

	return signToken(t, jwt.MapClaims{
		"preferred_username": username,
		"sub":                username + "-uuid",
		"realm_access":       map[string]any{"roles": roleList},
	})
}

func TestMiddleware(t *testing.T) {
	policy := NewPolicy(GatewayRules())

	var gotPrincipal *Principal
	handler := Middleware(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"permit all without token", "GET", "/catalog/5.jpg", "", http.StatusOK},
		{"missing token on protected path", "GET", "/api/produits", "", http.StatusUnauthorized},
		{"client reads products", "GET", "/api/produits", clientToken(t, "client-1", "CLIENT"), http.StatusOK},
		{"client cannot create products", "POST", "/api/produits", clientToken(t, "client-1", "CLIENT"), http.StatusForbidden},
		{"admin creates products", "POST", "/api/produits", clientToken(t, "admin", "ADMIN"), http.StatusOK},
		{"admin cannot place orders", "POST", "/api/commandes", clientToken(t, "admin", "ADMIN"), http.StatusForbidden},
		{"authenticated default on unknown path", "GET", "/unknown", clientToken(t, "client-1"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	// last successful call carried a principal
	require.NotNil(t, gotPrincipal)
}

func TestMiddlewarePrincipalIdentity(t *testing.T) {
	policy := NewPolicy(OrderRules())

	var principal *Principal
	handler := Middleware(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, _ = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/commandes/client/client-1", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken(t, "client-1", "CLIENT"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, principal)
	require.Equal(t, "client-1", principal.Identity)
	require.True(t, principal.Roles.Has("CLIENT"))
}
