package handlers

import (
	"net/http"

	"github.com/SscSPs/finance_dashboard/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// getHealth godoc
// @Summary Show the status of server.
// @Tags root
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// getSuggestedCategories godoc
// @Summary Suggested categories
// @Description The fixed list offered by the add and edit forms. Stored categories are free text.
// @Tags categories
// @Produce json
// @Success 200 {array} string
// @Router /categories/suggested [get]
func getSuggestedCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": domain.SuggestedCategories})
}

// registerCategoryRoutes registers the category helpers.
func registerCategoryRoutes(group *gin.RouterGroup) {
	group.GET("/categories/suggested", getSuggestedCategories)
}
