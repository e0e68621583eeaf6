// Package testutil builds release archives and a stub GitHub releases API
// for tests that exercise the download and scaffold workflow.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// Entry is one archive member. Names ending in "/" are directories.
// A non-empty Link makes the entry a symlink to Link.
type Entry struct {
	Name string
	Body string
	Mode os.FileMode
	Link string
}

func (e Entry) mode() os.FileMode {
	if e.Mode != 0 {
		return e.Mode
	}
	if strings.HasSuffix(e.Name, "/") {
		return 0755
	}
	return 0644
}

// Zip builds a zip archive from entries. It panics on encoder errors,
// which only happen on programming mistakes.
func Zip(entries ...Entry) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		mode := e.mode()
		if e.Link != "" {
			mode = os.ModeSymlink | 0777
		} else if strings.HasSuffix(e.Name, "/") {
			mode |= os.ModeDir
		}
		hdr.SetMode(mode)
		w, err := zw.CreateHeader(hdr)
		must(err)
		body := e.Body
		if e.Link != "" {
			body = e.Link
		}
		if !strings.HasSuffix(e.Name, "/") {
			_, err = w.Write([]byte(body))
			must(err)
		}
	}
	must(zw.Close())
	return buf.Bytes()
}

// TarGz builds a gzip-compressed tarball from entries, preceded by a pax
// global header the way GitHub tarballs are.
func TarGz(entries ...Entry) []byte {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	must(tw.WriteHeader(&tar.Header{
		Typeflag:   tar.TypeXGlobalHeader,
		Name:       "pax_global_header",
		PAXRecords: map[string]string{"comment": "0123456789abcdef"},
	}))

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: int64(e.mode())}
		switch {
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
		}
		must(tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.Body))
			must(err)
		}
	}
	must(tw.Close())
	must(gw.Close())
	return buf.Bytes()
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// GitHub is a stub of the releases API plus an archive download endpoint.
type GitHub struct {
	Server *httptest.Server

	mu       sync.Mutex
	archive  []byte
	paths    []string
	metaHits int32
	zipHits  int32
	failMeta int
}

// NewGitHub starts a stub serving archive for every release. Close it with
// Close when done.
func NewGitHub(archive []byte) *GitHub {
	g := &GitHub{archive: archive}

	r := chi.NewRouter()
	r.Get("/repos/{owner}/{repo}/releases/latest", g.release)
	r.Get("/repos/{owner}/{repo}/releases/tags/{tag}", g.release)
	r.Get("/archives/{repo}/{tag}", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&g.zipHits, 1)
		g.mu.Lock()
		data := g.archive
		g.mu.Unlock()
		w.Header().Set("Content-Type", "application/zip")
		w.Write(data)
	})
	g.Server = httptest.NewServer(r)
	return g
}

func (g *GitHub) release(w http.ResponseWriter, req *http.Request) {
	atomic.AddInt32(&g.metaHits, 1)
	g.mu.Lock()
	g.paths = append(g.paths, req.URL.Path)
	fail := g.failMeta
	g.mu.Unlock()

	if fail != 0 {
		w.WriteHeader(fail)
		return
	}

	repo := chi.URLParam(req, "repo")
	tag := chi.URLParam(req, "tag")
	if tag == "" {
		tag = "v1.0.0"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"tag_name":    tag,
		"zipball_url": g.Server.URL + "/archives/" + repo + "/" + tag,
	})
}

// URL returns the base URL to use as the API base.
func (g *GitHub) URL() string { return g.Server.URL }

// Client returns an HTTP client for the stub.
func (g *GitHub) Client() *http.Client { return g.Server.Client() }

// SetArchive replaces the served archive.
func (g *GitHub) SetArchive(data []byte) {
	g.mu.Lock()
	g.archive = data
	g.mu.Unlock()
}

// FailMetadata makes release lookups answer with status.
func (g *GitHub) FailMetadata(status int) {
	g.mu.Lock()
	g.failMeta = status
	g.mu.Unlock()
}

// Requests returns the total number of HTTP requests served.
func (g *GitHub) Requests() int {
	return int(atomic.LoadInt32(&g.metaHits) + atomic.LoadInt32(&g.zipHits))
}

// MetadataPaths returns the request paths of release lookups, in order.
func (g *GitHub) MetadataPaths() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.paths...)
}

// Close shuts the stub down.
func (g *GitHub) Close() { g.Server.Close() }
