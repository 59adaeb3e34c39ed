package auth

import (
	"context"
	"net/http"
	"strings"

	"barsandbios/internal/logging"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Role   Role
}

// Can reports whether the caller's role grants c.
func (id Identity) Can(c Capability) bool {
	return id.Role.Can(c)
}

// Owns reports whether the caller is userID.
func (id Identity) Owns(userID int64) bool {
	return id.UserID != 0 && id.UserID == userID
}

type contextKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = logging.ContextWithUserID(ctx, id.UserID)
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Verifier validates bearer tokens.
type Verifier interface {
	Validate(token string) (Identity, error)
}

// Resolver maps the identity claimed by a token onto the account as it
// currently exists. An error means the account is gone or unreadable.
type Resolver interface {
	Resolve(ctx context.Context, claimed Identity) (Identity, error)
}

// Middleware attaches the caller's identity to the request context. The
// token only names the account: when resolver is set, the role is read
// from the account on every request, so demotions and deletions apply to
// tokens already issued. Requests without a token, with an invalid one or
// for an account that no longer resolves pass through anonymously;
// handlers decide whether identity is required.
func Middleware(verifier Verifier, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := authenticate(r, verifier, resolver); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(r *http.Request, verifier Verifier, resolver Resolver) (Identity, bool) {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return Identity{}, false
	}
	id, err := verifier.Validate(token)
	if err != nil {
		return Identity{}, false
	}
	if resolver == nil {
		return id, true
	}
	current, err := resolver.Resolve(r.Context(), id)
	if err != nil || current.UserID == 0 {
		return Identity{}, false
	}
	return current, true
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
