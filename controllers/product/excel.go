package productcontroller

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// POST /products/admin/import
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header, err := c.FormFile("file")
		if err != nil {
			apierror.Respond(c, apierror.BadRequest("Excel file is required"))
			return
		}

		file, err := header.Open()
		if err != nil {
			apierror.Respond(c, apierror.BadRequest("failed to open Excel file"))
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, header.Size)
		if err != nil {
			apierror.Respond(c, apierror.BadRequest("failed to parse Excel file"))
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			apierror.Respond(c, apierror.BadRequest("Excel file is empty or missing header row"))
			return
		}

		result := ImportSheet(db.WithContext(c.Request.Context()), xlFile.Sheets[0])
		slog.InfoContext(c.Request.Context(), "product import finished",
			slog.Int("created", result.Created),
			slog.Int("updated", result.Updated),
			slog.Int("skipped", result.Skipped),
		)
		c.JSON(http.StatusOK, result)
	}
}

// ImportSheet upserts one product per data row. Rows with an ID that
// matches a live product update it; everything else is created. Rows that
// fail to parse or validate are skipped.
func ImportSheet(db *gorm.DB, sheet *xlsx.Sheet) ImportResult {
	var result ImportResult
	for i := 1; i < len(sheet.Rows); i++ {
		id, input, err := parseRow(sheet.Rows[i])
		if err == nil {
			err = input.validate()
		}
		if err != nil {
			result.Skipped++
			continue
		}

		updated, err := upsertProduct(db, id, input)
		switch {
		case err != nil:
			result.Skipped++
		case updated:
			result.Updated++
		default:
			result.Created++
		}
	}
	return result
}

func upsertProduct(db *gorm.DB, id uint, input ProductInput) (bool, error) {
	updated := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if id != 0 {
			err := lockProduct(tx, id, &product)
			var apiErr *apierror.Error
			switch {
			case err == nil:
				updated = true
			case errors.As(err, &apiErr) && apiErr.Kind == apierror.KindNotFound:
				product = models.Product{}
			default:
				return err
			}
		}
		// The workbook carries no review stats; keep the live ones.
		input.Rating, input.ReviewCount = product.Rating, product.ReviewCount
		input.apply(&product)
		return tx.Save(&product).Error
	})
	return updated, err
}

func parseRow(row *xlsx.Row) (uint, ProductInput, error) {
	get := func(index int) string {
		if row != nil && index < len(row.Cells) {
			return strings.TrimSpace(row.Cells[index].String())
		}
		return ""
	}

	var (
		id    uint
		input ProductInput
	)
	if raw := get(0); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, input, err
		}
		id = uint(n)
	}

	input.Name = get(1)
	price, err := decimal.NewFromString(get(2))
	if err != nil {
		return 0, input, err
	}
	input.Price = &price
	if raw := get(3); raw != "" {
		op, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, input, err
		}
		input.OriginalPrice = &op
	}
	if raw := get(4); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, input, err
		}
		input.Discount = &d
	}
	input.Category = get(5)
	input.Sub = get(6)
	input.Description = get(7)
	input.Image = get(8)
	if raw := get(9); raw != "" {
		input.Images = strings.Split(raw, listSeparator)
	}
	if raw := get(10); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, input, err
		}
		input.StockQuantity = n
	}
	if raw := get(11); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return 0, input, err
		}
		input.IsFeatured = b
	}
	return id, input, nil
}
