package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type principalKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller's principal in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, jwt.ErrInvalidClaims)
				return
			}

			principal, err := jwt.PrincipalFromClaims(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		}
		return http.HandlerFunc(hfn)
	}
}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the principal stored by AuthRequired.
func PrincipalFromContext(ctx context.Context) (user.Principal, error) {
	principal, ok := ctx.Value(principalKey{}).(user.Principal)
	if !ok {
		return user.Principal{}, user.ErrPrincipalMissing
	}
	return principal, nil
}
