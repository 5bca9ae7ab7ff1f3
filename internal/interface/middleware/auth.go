package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-gis-markers/pkg/helpers"
	"github.com/oksasatya/go-gis-markers/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUserNameKey = "userName"
)

// Identity is the verified caller attached by Auth.
type Identity struct {
	UserID   int64
	Username string
}

// Auth gates a route on a bearer access token. A missing token is 401. A
// credential in another scheme, or a token that is malformed, tampered or
// expired, is 403. On success the verified userID and userName are set in the
// Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, bearer := bearerToken(c.GetHeader("Authorization"))
		if !bearer {
			response.Error(c, http.StatusForbidden, "unsupported authorization scheme", response.ErrorBody{Code: "forbidden"})
			return
		}
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing access token", response.ErrorBody{Code: "unauthorized"})
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusForbidden, "invalid or expired access token", response.ErrorBody{Code: "forbidden"})
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserNameKey, claims.Username)
		c.Next()
	}
}

// CurrentUser returns the identity set by Auth.
func CurrentUser(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(int64)
	if !ok {
		return Identity{}, false
	}
	return Identity{UserID: id, Username: c.GetString(CtxUserNameKey)}, true
}

// bearerToken extracts the credential from "Bearer <token>". An empty header or
// a bare "Bearer" yields an empty token; bearer is false only when a credential
// is present under another scheme.
func bearerToken(header string) (token string, bearer bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", true
	}
	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
