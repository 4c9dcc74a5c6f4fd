package http

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slotline-io/slotline/pkg/domain/types"
	"github.com/slotline-io/slotline/pkg/usecase"
)

// UserHeader carries the authenticated employee ID. Authentication
// itself happens upstream (reverse proxy / IAP); this service trusts
// the header and only resolves it into a role scope.
const UserHeader = "X-Slotline-User"

type ctxKey string

const scopeCtxKey ctxKey = "roleScope"

// identityMiddleware resolves the calling user into a RoleScope and
// stores it on the request context. Requests without the user header
// are rejected before reaching any handler.
func identityMiddleware(uc *usecase.UseCases) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserHeader)
			if userID == "" {
				respondError(w, r, http.StatusUnauthorized, "Unauthorized",
					goerr.New("missing user header", goerr.V("header", UserHeader)))
				return
			}

			scope, err := uc.ResolveScope(r.Context(), types.EmployeeID(userID))
			if err != nil {
				respondEngineError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), scopeCtxKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// scopeFrom returns the RoleScope stored by identityMiddleware
func scopeFrom(ctx context.Context) *usecase.RoleScope {
	scope, _ := ctx.Value(scopeCtxKey).(*usecase.RoleScope)
	return scope
}
