package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

//go:embed swagger/openapi.json
var openAPIDoc []byte

//go:embed swagger/index.html
var docsPage string

const openAPIPath = "/swagger/doc.json"

// registerDocsRoutes serves the OpenAPI document and a Swagger UI page.
func registerDocsRoutes(router gin.IRoutes) {
	router.GET(openAPIPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPIDoc)
	})
	page := []byte(strings.ReplaceAll(docsPage, "{{SPEC_URL}}", openAPIPath))
	router.GET("/swagger", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}
