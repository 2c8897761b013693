// Package identity reads the caller identity supplied by the upstream gateway.
package identity

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-rental-api/internal/shared/errors"
)

// Headers set by the authenticating gateway. The service trusts them as-is.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const ginKey = "identity.principal"

type contextKey struct{}

// Principal is the authenticated user as asserted by the gateway. Role is upper-cased.
type Principal struct {
	UserID int64
	Role   string
}

// Middleware rejects requests without a usable identity and stores the principal on both
// the gin context and the request context. When roles is non-empty the role header must
// name one of them.
func Middleware(responder *apierrors.Responder, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, detail := parse(c.GetHeader(HeaderUserID), c.GetHeader(HeaderUserRole), roles)
		if detail != "" {
			responder.Abort(c, apierrors.ErrUnauthorized.WithDetail(detail))
			return
		}
		c.Set(ginKey, principal)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func parse(rawID, rawRole string, roles []string) (Principal, string) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return Principal{}, "missing " + HeaderUserID + " header"
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, "invalid " + HeaderUserID + " header"
	}
	role := strings.ToUpper(strings.TrimSpace(rawRole))
	if role == "" || (len(roles) > 0 && !slices.Contains(roles, role)) {
		return Principal{}, "missing or unknown " + HeaderUserRole + " header"
	}
	return Principal{UserID: id, Role: role}, ""
}

// WithPrincipal stores the principal on ctx.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, principal)
}

// FromContext returns the principal stored by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(contextKey{}).(Principal)
	return principal, ok
}

// FromGin returns the principal for a gin request; handlers mounted behind Middleware always have one.
func FromGin(c *gin.Context) (Principal, bool) {
	if v, ok := c.Get(ginKey); ok {
		principal, ok := v.(Principal)
		return principal, ok
	}
	return FromContext(c.Request.Context())
}
