package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

// RequireUser resolves the bearer token to an active user and stores the
// caller's identity on the context. The role comes from the database, not
// the token, so role changes apply immediately.
func RequireUser(db *gorm.DB, tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			apierror.Respond(c, apierror.Unauthenticated("authorization header is missing"))
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			apierror.Respond(c, apierror.Unauthenticated("could not validate credentials"))
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierror.Respond(c, apierror.Unauthenticated("could not validate credentials"))
				return
			}
			apierror.Respond(c, apierror.Storage("failed to load user", err))
			return
		}
		if user.Email != claims.Subject {
			apierror.Respond(c, apierror.Unauthenticated("could not validate credentials"))
			return
		}
		if !user.IsActive {
			apierror.Respond(c, apierror.Forbidden("inactive user account"))
			return
		}

		auth.SetIdentity(c, auth.IdentityOf(&user))
		c.Next()
	}
}

// RequireRole must run after RequireUser.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			apierror.Respond(c, apierror.Unauthenticated("could not validate credentials"))
			return
		}
		if !auth.Authorize(id, role) {
			apierror.Respond(c, apierror.Forbidden(string(role)+" access required"))
			return
		}
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on websocket upgrades, so those may pass ?access_token= instead.
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		if websocket.IsWebSocketUpgrade(c.Request) {
			if token := c.Query("access_token"); token != "" {
				return token, true
			}
		}
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
