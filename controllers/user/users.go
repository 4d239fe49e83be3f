package userControllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// GET /admin/users
func GetAllUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.WithContext(c.Request.Context()).
			Order("created_at desc, id desc").
			Find(&users).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch users", err))
			return
		}

		out := make([]auth.UserPublic, 0, len(users))
		for i := range users {
			out = append(out, auth.PublicUser(&users[i]))
		}
		c.JSON(http.StatusOK, out)
	}
}

// PUT /auth/me
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)

		var input UpdateUserInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}

		tx := db.WithContext(c.Request.Context())
		var user models.User
		if err := tx.First(&user, id.UserID).Error; err != nil {
			apierror.Respond(c, err)
			return
		}

		updates := make(map[string]interface{})
		if input.FullName != nil {
			updates["full_name"] = *input.FullName
			user.FullName = *input.FullName
		}
		if input.Phone != nil {
			updates["phone"] = *input.Phone
			user.Phone = *input.Phone
		}
		if len(updates) > 0 {
			if err := tx.Model(&user).Updates(updates).Error; err != nil {
				apierror.Respond(c, apierror.Storage("failed to update user", err))
				return
			}
		}
		c.JSON(http.StatusOK, auth.PublicUser(&user))
	}
}

// PATCH /admin/users/:id/role
func UpdateUserRole(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := auth.CurrentIdentity(c)
		userID, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		var input UpdateRoleInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}
		role, ok := models.ParseRole(input.Role)
		if !ok {
			apierror.Respond(c, apierror.Validation("invalid role. Must be one of: customer, admin"))
			return
		}
		if userID == caller.UserID && role != models.RoleAdmin {
			apierror.Respond(c, apierror.BadRequest("admins cannot revoke their own admin role"))
			return
		}

		tx := db.WithContext(c.Request.Context())
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierror.Respond(c, apierror.NotFound("user not found"))
				return
			}
			apierror.Respond(c, apierror.Storage("failed to load user", err))
			return
		}
		if err := tx.Model(&user).Update("role", role).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to update role", err))
			return
		}
		user.Role = role

		slog.InfoContext(c.Request.Context(), "user role changed",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("role", string(role)),
			slog.Uint64("by", uint64(caller.UserID)),
		)
		c.JSON(http.StatusOK, auth.PublicUser(&user))
	}
}
