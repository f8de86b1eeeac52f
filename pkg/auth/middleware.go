package auth

import (
	"context"
	"net/http"

	"github.com/redone-net/marketplace/pkg/httperr"
)

// Principal is the authenticated caller of one request.
type Principal struct {
	Identity string
	Roles    RoleSet
}

type contextKey struct{}

// PrincipalFromContext returns the request principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)

	return p, ok
}

// Middleware decodes the bearer token, stores the principal in the request
// context and enforces the policy table. Requests failing the role check
// get 403; requests without a decodable credential where one is required
// get 401.
func Middleware(policy *Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := DecodeBearer(r.Header.Get("Authorization"))

			mode, roles := policy.Evaluate(r.Method, r.URL.Path)
			if mode == ModePermitAll {
				if err == nil {
					r = r.WithContext(withPrincipal(r.Context(), claims))
				}
				next.ServeHTTP(w, r)

				return
			}

			if err != nil {
				httperr.Write(w, httperr.New(httperr.KindUnauthenticated, "authentication required"))

				return
			}

			principal := &Principal{
				Identity: Identity(claims),
				Roles:    ExtractRoles(claims),
			}

			if mode == ModeAnyRole && !principal.Roles.HasAny(roles...) {
				httperr.Write(w, httperr.New(httperr.KindForbidden, "access denied"))

				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withPrincipal(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, &Principal{
		Identity: Identity(claims),
		Roles:    ExtractRoles(claims),
	})
}
