package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/telcox/internal/accountcontext"
	obscontext "github.com/smallbiznis/telcox/internal/observability/context"
)

const (
	headerAdminToken   = "X-Admin-Token"
	contextAccountKey  = "account_id"
	contextRawTokenKey = "access_token"

	actorAccount = "account"
	actorAdmin   = "admin"
)

// AuthRequired authenticates the bearer token and binds the account to the
// request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.authSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		accountID := principal.Account.ID
		ctx := accountcontext.WithAccountID(c.Request.Context(), accountID)
		ctx = obscontext.WithAccountID(ctx, accountID.String())
		ctx = obscontext.WithActor(ctx, actorAccount, accountID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Set(contextAccountKey, accountID.String())
		c.Set(contextRawTokenKey, raw)
		c.Next()
	}
}

// AdminRequired guards the plan management routes with a shared token.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := strings.TrimSpace(s.cfg.AdminAPIToken)
		given := strings.TrimSpace(c.GetHeader(headerAdminToken))
		if expected == "" || given == "" ||
			subtle.ConstantTimeCompare([]byte(expected), []byte(given)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := obscontext.WithActor(c.Request.Context(), actorAdmin, "")
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(header))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
