package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/and161185/taskhive/internal/service"
)

type ctxKey string

const principalKey ctxKey = "th.principal"

// WithPrincipal stores the authenticated caller in context.
func WithPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the authenticated caller from context.
func PrincipalFromCtx(ctx context.Context) (service.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return service.Principal{}, false
	}
	p, ok := v.(service.Principal)
	return p, ok
}

// bearerToken extracts "Authorization: Bearer <JWT>".
func bearerToken(r *http.Request) (string, bool) {
	for _, v := range r.Header.Values("Authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, true
			}
		}
	}
	return "", false
}
