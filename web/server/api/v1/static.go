package api

import (
	"net/http"
	"path"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// staticFS serves files under root of a vfs.FileSystem.
type staticFS struct {
	fs   vfs.FileSystem
	root string
}

var _ http.FileSystem = staticFS{}

// NewStaticFS returns an http.FileSystem rooted at dir of fs.
func NewStaticFS(fs vfs.FileSystem, dir string) http.FileSystem {
	return staticFS{fs: fs, root: dir}
}

// Open implements http.FileSystem. name is cleaned, so that it can't escape
// the root directory.
func (s staticFS) Open(name string) (http.File, error) {
	f, err := s.fs.Open(path.Join(s.root, path.Clean("/"+name)))
	if err != nil {
		//nolint:wrapcheck // http.FileServer maps these to status codes.
		return nil, err
	}

	return f, nil
}

// staticFallback serves GET and HEAD requests for existing files in fsys, and
// passes everything else to notFound. Directories are only served if they
// contain an index.html file.
func staticFallback(fsys http.FileSystem, notFound http.Handler) http.HandlerFunc {
	files := http.FileServer(fsys)

	return func(w http.ResponseWriter, r *http.Request) {
		if (r.Method != http.MethodGet && r.Method != http.MethodHead) ||
			!staticExists(fsys, r.URL.Path) {
			notFound.ServeHTTP(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
}

func staticExists(fsys http.FileSystem, name string) bool {
	name = path.Clean("/" + name)
	f, err := fsys.Open(name)
	if err != nil {
		return false
	}
	fi, err := f.Stat()
	_ = f.Close()
	if err != nil {
		return false
	}
	if !fi.IsDir() {
		return true
	}

	return staticExists(fsys, path.Join(name, "index.html"))
}
