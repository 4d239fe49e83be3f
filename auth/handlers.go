package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// LoginInput accepts JSON or the OAuth2 password form (username/password).
type LoginInput struct {
	Email    string `json:"email" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserPublic struct {
	ID       uint        `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role"`
	IsAdmin  bool        `json:"is_admin"`
	IsActive bool        `json:"is_active"`
}

func PublicUser(u *models.User) UserPublic {
	return UserPublic{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		IsAdmin:  u.IsAdmin(),
		IsActive: u.IsActive,
	}
}

// POST /auth/register
func Register(db *gorm.DB, tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}
		email := normalizeEmail(input.Email)
		tx := db.WithContext(c.Request.Context())

		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to check email", err))
			return
		}
		if count > 0 {
			apierror.Respond(c, apierror.BadRequest("an account with this email already exists"))
			return
		}

		hashed, err := HashPassword(input.Password)
		if err != nil {
			apierror.Respond(c, apierror.Storage("failed to hash password", err))
			return
		}
		user := models.User{
			Email:          email,
			HashedPassword: hashed,
			FullName:       input.FullName,
			Phone:          input.Phone,
			Role:           models.RoleCustomer,
			IsActive:       true,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				apierror.Respond(c, apierror.BadRequest("an account with this email already exists"))
				return
			}
			apierror.Respond(c, apierror.Storage("failed to create user", err))
			return
		}

		token, err := tokens.Issue(&user)
		if err != nil {
			apierror.Respond(c, apierror.Storage("token generation failed", err))
			return
		}
		slog.InfoContext(c.Request.Context(), "user registered", slog.Uint64("user_id", uint64(user.ID)))
		c.JSON(http.StatusCreated, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// POST /auth/login
func Login(db *gorm.DB, tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}

		var user models.User
		err := db.WithContext(c.Request.Context()).
			Where("email = ?", normalizeEmail(input.Email)).
			First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			apierror.Respond(c, apierror.Storage("failed to load user", err))
			return
		}
		if err != nil || !CheckPassword(user.HashedPassword, input.Password) {
			apierror.Respond(c, apierror.Unauthenticated("incorrect email or password"))
			return
		}
		if !user.IsActive {
			apierror.Respond(c, apierror.Forbidden("inactive user account"))
			return
		}

		token, err := tokens.Issue(&user)
		if err != nil {
			apierror.Respond(c, apierror.Storage("token generation failed", err))
			return
		}
		c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}

// GET /auth/me
func Me(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			apierror.Respond(c, apierror.Unauthenticated("could not validate credentials"))
			return
		}
		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, id.UserID).Error; err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, PublicUser(&user))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
