// Package web bundles the dashboard templates into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed views/*.html
var views embed.FS

// Engine returns the html engine serving the embedded views.
func Engine() *html.Engine {
	sub, err := fs.Sub(views, "views")
	if err != nil {
		// views is a compile-time constant directory
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("initial", func(s string) string {
		if s == "" {
			return "?"
		}
		return string([]rune(s)[:1])
	})
	return engine
}
