package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when the Authorization header carries no bearer token.
	ErrNoToken = errors.New("no bearer token")
	// ErrBadToken is returned when the bearer token cannot be decoded.
	ErrBadToken = errors.New("malformed bearer token")
)

// Claims is the decoded claim set of an access token.
type Claims map[string]any

// RoleSet is the flattened collection of role names derived from a
// caller's token for the duration of one request.
type RoleSet map[string]struct{}

// Has reports whether the set contains role.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]

	return ok
}

// HasAny reports whether the set contains at least one of the given roles.
func (s RoleSet) HasAny(roles ...string) bool {
	for _, role := range roles {
		if s.Has(role) {
			return true
		}
	}

	return false
}

// DecodeBearer extracts and decodes the bearer token of an Authorization
// header. Signature verification is the identity provider's concern; the
// services only read the already-issued claims.
func DecodeBearer(authorization string) (Claims, error) {
	token := strings.TrimSpace(authorization)
	if token == "" {
		return nil, ErrNoToken
	}

	const prefix = "Bearer "
	if len(token) < len(prefix) || !strings.EqualFold(token[:len(prefix)], prefix) {
		return nil, ErrNoToken
	}
	token = strings.TrimSpace(token[len(prefix):])
	if token == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrBadToken
	}

	return Claims(claims), nil
}

// ExtractRoles flattens the realm-level and per-resource role claims into
// a single set. Absent or malformed claims contribute nothing. The gateway
// and the backend services share this exact logic so their authorization
// decisions cannot drift.
func ExtractRoles(claims Claims) RoleSet {
	roles := RoleSet{}
	if claims == nil {
		return roles
	}

	if realmAccess, ok := claims["realm_access"].(map[string]any); ok {
		addRoles(roles, realmAccess["roles"])
	}

	if resourceAccess, ok := claims["resource_access"].(map[string]any); ok {
		for _, value := range resourceAccess {
			if clientAccess, ok := value.(map[string]any); ok {
				addRoles(roles, clientAccess["roles"])
			}
		}
	}

	return roles
}

func addRoles(set RoleSet, value any) {
	list, ok := value.([]any)
	if !ok {
		return
	}

	for _, entry := range list {
		if role, ok := entry.(string); ok {
			set[role] = struct{}{}
		}
	}
}

// Identity derives the caller's client identity: the preferred_username
// claim, falling back to the subject claim.
func Identity(claims Claims) string {
	if username, ok := claims["preferred_username"].(string); ok && username != "" {
		return username
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}

	return ""
}
