// Package web отдает встроенный в бинарник браузерный клиент.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFiles embed.FS

// RegisterRoutes регистрирует GET / (index.html) и /static/* (скрипты, стили, заглушка картинки).
func RegisterRoutes(router gin.IRouter) error {
	assets, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open embedded assets: %w", err)
	}
	index, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		return fmt.Errorf("failed to read index.html: %w", err)
	}

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	})
	router.StaticFS("/static", http.FS(assets))
	return nil
}
