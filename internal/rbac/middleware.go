package rbac

import (
	"net/http"
)

// Guard builds route middleware from an injected Checker. The forbidden
// writer lets the HTTP layer answer denials with its own error envelope.
type Guard struct {
	checker   *Checker
	forbidden http.HandlerFunc
}

func NewGuard(c *Checker, forbidden http.HandlerFunc) *Guard {
	if c == nil {
		c = NewChecker(nil)
	}
	if forbidden == nil {
		forbidden = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}
	return &Guard{checker: c, forbidden: forbidden}
}

// Require enforces a single permission.
func (g *Guard) Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles := RolesFromContext(r.Context())
			if len(roles) == 0 || !g.checker.Has(roles, perm) {
				g.forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny enforces that the caller has at least one of the permissions.
func (g *Guard) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles := RolesFromContext(r.Context())
			if len(roles) == 0 || !g.checker.Any(roles, perms...) {
				g.forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
