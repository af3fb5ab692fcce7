package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPerPage = 10
	maxPerPage     = 20
)

// parsePagination reads page and per_page query parameters with bounds
// checking. Page numbering starts at 1.
func parsePagination(c *gin.Context) (page, perPage int, err error) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
	}

	perPage = defaultPerPage
	if raw := c.Query("per_page"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil || perPage < 1 || perPage > maxPerPage {
			return 0, 0, fmt.Errorf("per_page must be between 1 and %d", maxPerPage)
		}
	}

	return page, perPage, nil
}
