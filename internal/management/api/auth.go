package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/bookcatalogue/catalogue/internal/management/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const roleKey = "auth.role"

type authUser struct {
	username     string
	passwordHash []byte
	role         string
}

// newAuthUsers hashes the configured credentials once at startup.
func newAuthUsers(users []config.User) []authUser {
	out := make([]authUser, 0, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		out = append(out, authUser{username: u.Username, passwordHash: hash, role: u.Role})
	}
	return out
}

// BasicAuth authenticates every request against the configured users and
// stores the caller's role in the request context.
func BasicAuth(users []config.User, log *zap.Logger) gin.HandlerFunc {
	hashed := newAuthUsers(users)

	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}

		for _, u := range hashed {
			if subtle.ConstantTimeCompare([]byte(u.username), []byte(username)) != 1 {
				continue
			}
			if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
				break
			}
			c.Set(roleKey, u.role)
			c.Next()
			return
		}

		log.Warn("Rejected credentials", zap.String("username", username))
		unauthorized(c)
	}
}

// RequireRole admits only callers holding one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(roleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient role"})
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="catalogue"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
}
