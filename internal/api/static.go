package api

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

//go:embed static/index.html
var assetsFS embed.FS

// staticHandler serves the embedded front-end bundle.
// Panics only if the embedded filesystem is corrupted, which cannot happen
// at runtime since assets are embedded at compile time.
func staticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		panic(fmt.Sprintf("static: failed to create sub-filesystem: %v", err))
	}
	return http.FileServer(http.FS(sub))
}
