package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Filter holds the catalog query parameters shared by the listing endpoints.
type Filter struct {
	Category string
	Sub      string
	InStock  *bool
	Featured *bool
	Skip     int
	Limit    int
}

// ParseFilter reads category, sub, in_stock, featured, skip and limit from
// the query string. Malformed or out-of-range values are validation errors.
func ParseFilter(c *gin.Context) (Filter, error) {
	f := Filter{
		Category: c.Query("category"),
		Sub:      c.Query("sub"),
		Limit:    DefaultLimit,
	}

	var err error
	if f.InStock, err = optionalBool(c, "in_stock"); err != nil {
		return f, err
	}
	if f.Featured, err = optionalBool(c, "featured"); err != nil {
		return f, err
	}
	if raw, ok := c.GetQuery("skip"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, apierror.Validation("skip must be a non-negative integer")
		}
		f.Skip = n
	}
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLimit {
			return f, apierror.Validation("limit must be an integer between 1 and " + strconv.Itoa(MaxLimit))
		}
		f.Limit = n
	}
	return f, nil
}

func optionalBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierror.Validation(name + " must be a boolean")
	}
	return &v, nil
}

// Apply narrows q to the filter and pages it in id order.
func (f Filter) Apply(q *gorm.DB) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Sub != "" {
		q = q.Where("sub = ?", f.Sub)
	}
	if f.InStock != nil {
		q = q.Where("in_stock = ?", *f.InStock)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	return q.Order("id").Offset(f.Skip).Limit(f.Limit)
}

// GET /products/
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := ParseFilter(c)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		listProducts(c, db, filter)
	}
}

// GET /products/category/:category
func GetProductsByCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := ParseFilter(c)
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		filter.Category = c.Param("category")
		listProducts(c, db, filter)
	}
}

func listProducts(c *gin.Context, db *gorm.DB, filter Filter) {
	products := []models.Product{}
	if err := filter.Apply(db.WithContext(c.Request.Context()).Model(&models.Product{})).
		Find(&products).Error; err != nil {
		apierror.Respond(c, apierror.Storage("failed to fetch products", err))
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /products/search?q=
func SearchProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.TrimSpace(c.Query("q"))
		if term == "" {
			apierror.Respond(c, apierror.Validation("q is required"))
			return
		}

		like := "%" + strings.ToLower(term) + "%"
		products := []models.Product{}
		if err := db.WithContext(c.Request.Context()).
			Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
			Order("id").
			Find(&products).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to search products", err))
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
