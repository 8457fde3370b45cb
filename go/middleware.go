package shroomserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authports "github.com/shroombros/shroom-api/internal/domains/auth/ports"
	apierrors "github.com/shroombros/shroom-api/internal/shared/errors"
)

const principalKey = "shroom.principal"

// DefaultRequestTimeout bounds every request when no timeout is configured.
const DefaultRequestTimeout = 15 * time.Second

var errMissingBearer = errors.New("missing bearer token")

// RequireAuth resolves the Authorization bearer token to a principal or aborts with 401.
func RequireAuth(auth authports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail(errMissingBearer.Error()))
			return
		}
		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequestTimeout attaches a deadline to the request context.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by RequireAuth.
func PrincipalFrom(c *gin.Context) (*authports.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*authports.Principal)
	return principal, ok && principal != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
