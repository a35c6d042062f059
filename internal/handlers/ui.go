// ui.go serves the browser upload page.
package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var indexPage []byte

// ServeUI returns the single-page upload form. The page talks to the same
// JSON API as every other client.
// GET /
func (h *Handler) ServeUI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}
