package productcontroller

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/controllers"
	"github.com/junaidrashid-git/aurelia-api/models"
	"gorm.io/gorm"
)

var (
	unsafeFilename = regexp.MustCompile(`[^\w\-.]`)
	imageExts      = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
)

// ImageStore keeps uploaded product images on local disk. Files in Dir are
// served under PublicPath.
type ImageStore struct {
	Dir        string
	PublicPath string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir, PublicPath: "/uploads/products"}
}

// Save writes the upload under a collision-free name and returns its URL.
func (s *ImageStore) Save(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(imageExts, ext) {
		return "", apierror.Validation("image must be one of " + strings.Join(imageExts, ", "))
	}
	base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	base = unsafeFilename.ReplaceAllString(base, "_")
	name := fmt.Sprintf("%s_%s%s", uuid.NewString()[:8], base, ext)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", apierror.Storage("failed to create upload folder", err)
	}
	if err := c.SaveUploadedFile(file, filepath.Join(s.Dir, name)); err != nil {
		return "", apierror.Storage("failed to save image", err)
	}
	return path.Join(s.PublicPath, name), nil
}

// Remove deletes the file behind a URL returned by Save. URLs this store did
// not produce are ignored.
func (s *ImageStore) Remove(url string) error {
	name, ok := strings.CutPrefix(url, s.PublicPath+"/")
	if !ok || name != filepath.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// POST /products/:id/images
//
// Multipart field "image". The URL is appended to images and becomes the
// primary image when the product has none.
func UploadProductImage(db *gorm.DB, store *ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		file, err := c.FormFile("image")
		if err != nil {
			apierror.Respond(c, apierror.BadRequest("no image uploaded"))
			return
		}

		url, err := store.Save(c, file)
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		var product models.Product
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := lockProduct(tx, id, &product); err != nil {
				return err
			}
			product.Images = append(product.Images, url)
			if product.Image == "" {
				product.Image = url
			}
			if err := tx.Save(&product).Error; err != nil {
				return apierror.Storage("failed to update product", err)
			}
			return nil
		})
		if err != nil {
			if rmErr := store.Remove(url); rmErr != nil {
				slog.WarnContext(c.Request.Context(), "orphaned upload", slog.String("url", url), slog.Any("error", rmErr))
			}
			apierror.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// DELETE /products/:id/images?url=
func DeleteProductImage(db *gorm.DB, store *ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := controllers.ParseID(c, "id")
		if err != nil {
			apierror.Respond(c, err)
			return
		}
		url := strings.TrimSpace(c.Query("url"))
		if url == "" {
			apierror.Respond(c, apierror.Validation("url is required"))
			return
		}

		var product models.Product
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := lockProduct(tx, id, &product); err != nil {
				return err
			}
			idx := slices.Index(product.Images, url)
			if idx < 0 && product.Image != url {
				return apierror.NotFound("image not found on product")
			}
			if idx >= 0 {
				product.Images = slices.Delete(product.Images, idx, idx+1)
			}
			if product.Image == url {
				product.Image = ""
				if len(product.Images) > 0 {
					product.Image = product.Images[0]
				}
			}
			if err := tx.Save(&product).Error; err != nil {
				return apierror.Storage("failed to update product", err)
			}
			return nil
		})
		if err != nil {
			apierror.Respond(c, err)
			return
		}

		if err := store.Remove(url); err != nil {
			slog.WarnContext(c.Request.Context(), "failed to remove image file", slog.String("url", url), slog.Any("error", err))
		}
		c.JSON(http.StatusOK, product)
	}
}
