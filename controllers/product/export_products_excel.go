package productcontroller

import (
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// Workbook columns, shared by export and import.
var workbookHeaders = []string{
	"ID", "Name", "Price", "OriginalPrice", "Discount", "Category", "Sub",
	"Description", "Image", "Images", "StockQuantity", "IsFeatured",
}

const listSeparator = "|"

// GET /products/admin/export
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.WithContext(c.Request.Context()).Order("id").Find(&products).Error; err != nil {
			apierror.Respond(c, apierror.Storage("failed to fetch products", err))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := WriteWorkbook(c.Writer, products); err != nil {
			apierror.Respond(c, apierror.Storage("failed to write Excel file", err))
			return
		}
	}
}

// WriteWorkbook renders products as a single-sheet xlsx workbook.
func WriteWorkbook(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, h := range workbookHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(strconv.FormatUint(uint64(p.ID), 10))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Price.StringFixed(2))
		if p.OriginalPrice != nil {
			row.AddCell().SetString(p.OriginalPrice.StringFixed(2))
		} else {
			row.AddCell().SetString("")
		}
		if p.Discount != nil {
			row.AddCell().SetString(strconv.FormatFloat(*p.Discount, 'f', -1, 64))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(p.Category)
		row.AddCell().SetString(p.Sub)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Image)
		row.AddCell().SetString(strings.Join(p.Images, listSeparator))
		row.AddCell().SetString(strconv.Itoa(p.StockQuantity))
		row.AddCell().SetString(strconv.FormatBool(p.IsFeatured))
	}

	return file.Write(w)
}
