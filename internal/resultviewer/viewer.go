// Package resultviewer serves a small embedded dashboard that lists
// completed benchmark runs by querying the boundary's /api/bench-runs
// endpoint client-side. The embed-and-neuter pattern (disable directory
// listing, fall back to index.html for the root) follows how the examples
// pack's static-file packages serve an embed.FS.
package resultviewer

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed static/*
var staticFS embed.FS

// Handler serves the dashboard at the given mount point (e.g. "/dashboard").
// It strips the mount prefix and serves out of the embedded static/
// directory, refusing directory listings.
func Handler(mountPath string) gin.HandlerFunc {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("resultviewer: embedded static assets missing: " + err.Error())
	}

	fileServer := http.StripPrefix(mountPath, http.FileServer(neuteredFS{http.FS(sub)}))

	return func(c *gin.Context) {
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}

// neuteredFS wraps an http.FileSystem so directory requests resolve to
// that directory's index.html instead of listing its contents.
type neuteredFS struct {
	http.FileSystem
}

func (nfs neuteredFS) Open(name string) (http.File, error) {
	f, err := nfs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if stat.IsDir() {
		index := strings.TrimSuffix(name, "/") + "/index.html"
		idx, err := nfs.FileSystem.Open(index)
		if err != nil {
			f.Close()
			return nil, fs.ErrNotExist
		}
		idx.Close()
		// Return the directory itself: http.FileServer serves its
		// index.html in place, whereas a plain file returned for a path
		// ending in "/" is answered with a redirect.
		return f, nil
	}

	return f, nil
}
