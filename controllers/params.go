// Package controllers holds helpers shared by the per-area handler packages.
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/aurelia-api/apierror"
)

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apierror.Validation("invalid " + name + ": " + raw)
	}
	return uint(id), nil
}
