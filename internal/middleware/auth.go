package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tehtaankatu/tasting/internal/errors"
	"github.com/tehtaankatu/tasting/internal/utils"
)

// Context keys set by the auth middleware.
const (
	CtxPlayerID   = "player_id"
	CtxPlayerName = "player_name"
	CtxSessionID  = "session_id"
	CtxIsHost     = "is_host"
)

// AuthMiddleware validates player tokens.
type AuthMiddleware struct {
	jwtManager *utils.JWTManager
}

func NewAuthMiddleware(jwtManager *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// RequirePlayer rejects requests without a valid player token.
func (m *AuthMiddleware) RequirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireHost rejects requests whose token does not belong to the session host.
func (m *AuthMiddleware) RequireHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authenticate(c) {
			return
		}

		if !c.GetBool(CtxIsHost) {
			m.reject(c, errors.New(errors.ErrNotHost))
			return
		}

		c.Next()
	}
}

// authenticate parses the token into the request context, aborting with 401
// when it is missing or invalid.
func (m *AuthMiddleware) authenticate(c *gin.Context) bool {
	token := m.extractToken(c)
	if token == "" {
		m.reject(c, errors.New(errors.ErrTokenInvalid, "missing player token"))
		return false
	}

	claims, err := m.jwtManager.ParseToken(token)
	if err != nil {
		m.reject(c, errors.New(errors.ErrTokenInvalid))
		return false
	}

	c.Set(CtxPlayerID, claims.PlayerID)
	c.Set(CtxPlayerName, claims.PlayerName)
	c.Set(CtxSessionID, claims.SessionID)
	c.Set(CtxIsHost, claims.IsHost)
	return true
}

func (m *AuthMiddleware) reject(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(appErr))
	c.Abort()
}

// extractToken pulls the token from the Authorization header, a dedicated
// header, or the query string. Query tokens exist for the websocket upgrade,
// where browsers cannot set headers.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if token := c.GetHeader("X-Player-Token"); token != "" {
		return token
	}

	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}
