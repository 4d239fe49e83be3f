package reviewControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/auth"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

const anonymous = "Anonymous"

type ReviewInput struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}

type ReviewOut struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UserName  string    `json:"user_name"`
}

type reviewRow struct {
	models.Review
	FullName *string
}

type ratingStats struct {
	Count int64
	Avg   *float64
}

// GET /reviews/product/:product_id
func GetProductReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := controllers.ParseID(c, "product_id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		var rows []reviewRow
		if err := db.WithContext(c.Request.Context()).
			Model(&models.Review{}).
			Select("reviews.*, users.full_name").
			Joins("LEFT JOIN users ON users.id = reviews.user_id").
			Where("reviews.product_id = ?", productID).
			Order("reviews.created_at DESC, reviews.id DESC").
			Scan(&rows).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch reviews", err))
			return
		}

		out := make([]ReviewOut, 0, len(rows))
		for _, r := range rows {
			name := anonymous
			if r.FullName != nil && *r.FullName != "" {
				name = *r.FullName
			}
			out = append(out, ReviewOut{
				ID:        r.ID,
				UserID:    r.UserID,
				ProductID: r.ProductID,
				Rating:    r.Rating,
				Comment:   r.Comment,
				CreatedAt: r.CreatedAt,
				UserName:  name,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// POST /reviews/product/:product_id
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		productID, err := controllers.ParseID(c, "product_id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		var input ReviewInput
		if err := apierror.Bind(c, &input); err != nil {
			apierror.Respond(c, err)
			return
		}
		if input.Rating < 1 || input.Rating > 5 {
			apierror.Respond(c, apierror.Validation("rating must be between 1 and 5"))
			return
		}

		review := models.Review{
			UserID:    id.UserID,
			ProductID: productID,
			Rating:    input.Rating,
			Comment:   input.Comment,
		}
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.Select("id").First(&product, productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.NotFound("product not found")
				}
				return apierror.Storage("failed to load product", err)
			}
			if err := tx.Create(&review).Error; err != nil {
				return apierror.Storage("failed to create review", err)
			}
			return RefreshProductRating(tx, productID)
		})
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

// DELETE /reviews/:id
func DeleteReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.CurrentIdentity(c)
		reviewID, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			var review models.Review
			if err := tx.First(&review, reviewID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.NotFound("review not found")
				}
				return apierror.Storage("failed to load review", err)
			}
			if review.UserID != id.UserID && !auth.Authorize(id, models.RoleAdmin) {
				return apierror.Forbidden("not authorized to delete this review")
			}
			if err := tx.Delete(&review).Error; err != nil {
				return apierror.Storage("failed to delete review", err)
			}
			return RefreshProductRating(tx, review.ProductID)
		})
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RefreshProductRating recomputes the product's average rating and review
// count from its reviews. Soft-deleted products are left alone.
func RefreshProductRating(tx *gorm.DB, productID uint) error {
	var stats ratingStats
	if err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where("product_id = ?", productID).
		Scan(&stats).Error; err != nil {
		return apierror.Storage("failed to compute rating", err)
	}

	rating := 0.0
	if stats.Avg != nil {
		rating = *stats.Avg
	}
	if err := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumns(map[string]any{
			"rating":       rating,
			"review_count": stats.Count,
		}).Error; err != nil {
		return apierror.Storage("failed to update product rating", err)
	}
	return nil
}
