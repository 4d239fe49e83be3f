package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

type SubCategory struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type Category struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Subs  []SubCategory `json:"subs"`
}

type categoryRow struct {
	Category string
	Sub      string
	Count    int64
}

// GET /products/categories
//
// Categories are free-text product attributes, so the tree is derived from
// the live catalog rather than stored.
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []categoryRow
		if err := db.WithContext(c.Request.Context()).
			Model(&models.Product{}).
			Select("category, sub, COUNT(*) AS count").
			Group("category, sub").
			Order("category, sub").
			Scan(&rows).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch categories", err))
			return
		}

		categories := []Category{}
		for _, r := range rows {
			if n := len(categories); n == 0 || categories[n-1].Name != r.Category {
				categories = append(categories, Category{Name: r.Category, Subs: []SubCategory{}})
			}
			cat := &categories[len(categories)-1]
			cat.Count += r.Count
			if r.Sub != "" {
				cat.Subs = append(cat.Subs, SubCategory{Name: r.Sub, Count: r.Count})
			}
		}
		c.JSON(http.StatusOK, categories)
	}
}
