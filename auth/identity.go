package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/models"
)

const identityKey = "identity"

// Identity is the authenticated caller, independent of how users are stored.
type Identity struct {
	UserID uint
	Email  string
	Role   models.Role
}

func IdentityOf(u *models.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Authorize reports whether id may perform an operation that requires the
// given role. Admins satisfy every role.
func Authorize(id Identity, required models.Role) bool {
	switch id.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCustomer:
		return required == models.RoleCustomer
	}
	return false
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the identity stored by the auth middleware.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
