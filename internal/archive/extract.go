package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/spark-development/puzzle-cli/internal/platform"
)

// Format identifies an archive container.
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatTarGz
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarGz:
		return "tar.gz"
	default:
		return "unknown"
	}
}

var (
	zipMagic  = []byte("PK\x03\x04")
	gzipMagic = []byte{0x1f, 0x8b}
)

// ErrUnsafePath is returned for entries that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Detect reads the first bytes of r to identify the archive format.
func Detect(r io.ReaderAt) Format {
	head := make([]byte, 4)
	n, _ := r.ReadAt(head, 0)
	head = head[:n]
	switch {
	case bytes.HasPrefix(head, zipMagic):
		return FormatZip
	case bytes.HasPrefix(head, gzipMagic):
		return FormatTarGz
	default:
		return FormatUnknown
	}
}

// Extract unpacks archivePath into dest, dropping strip leading path
// components from each entry. Entries with nothing left after stripping
// (the wrapper directory itself) are skipped.
func Extract(fs afero.Fs, archivePath, dest string, strip int, log zerolog.Logger) error {
	f, err := fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	if err := fs.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	x := &extractor{
		fs:    fs,
		dest:  filepath.Clean(dest),
		strip: strip,
		log:   log,
		links: make(map[string]string),
	}

	switch format := Detect(f); format {
	case FormatZip:
		return x.zip(f, info.Size())
	case FormatTarGz:
		return x.tarGz(f)
	default:
		return fmt.Errorf("unsupported archive format in %s", archivePath)
	}
}

type extractor struct {
	fs    afero.Fs
	dest  string
	strip int
	log   zerolog.Logger
	count int

	// links maps each symlink written so far to its raw target.
	links map[string]string
}

// maxLinkHops bounds link resolution the way ELOOP does.
const maxLinkHops = 40

func (x *extractor) zip(r io.ReaderAt, size int64) error {
	// Insecure names are rejected per entry by target, not wholesale.
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("opening zip archive: %w", err)
	}

	for _, zf := range zr.File {
		mode := zf.Mode()
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", zf.Name, err)
		}
		err = x.entry(zf.Name, mode, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	x.log.Debug().Int("entries", x.count).Str("dest", x.dest).Msg("zip extracted")
	return nil
}

func (x *extractor) tarGz(r io.Reader) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		var mode os.FileMode
		switch hdr.Typeflag {
		case tar.TypeDir:
			mode = os.ModeDir | os.FileMode(hdr.Mode).Perm()
		case tar.TypeReg:
			mode = os.FileMode(hdr.Mode).Perm()
		case tar.TypeSymlink:
			if err := x.symlink(hdr.Name, hdr.Linkname); err != nil {
				return err
			}
			continue
		default:
			// pax_global_header and device entries carry no project content.
			x.log.Debug().Str("entry", hdr.Name).Msg("skipping tar entry")
			continue
		}

		if err := x.entry(hdr.Name, mode, tr); err != nil {
			return err
		}
	}
	x.log.Debug().Int("entries", x.count).Str("dest", x.dest).Msg("tarball extracted")
	return nil
}

// entry writes one archive member. For zip symlinks the content is the
// link target.
func (x *extractor) entry(name string, mode os.FileMode, content io.Reader) error {
	if mode&os.ModeSymlink != 0 {
		target, err := io.ReadAll(content)
		if err != nil {
			return fmt.Errorf("reading link %s: %w", name, err)
		}
		return x.symlink(name, string(target))
	}

	target, ok, err := x.target(name)
	if err != nil || !ok {
		return err
	}

	if mode.IsDir() {
		if err := x.fs.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", target, err)
		}
		return nil
	}

	if err := x.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := x.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}
	x.count++

	return platform.Chmod(x.fs, target, perm)
}

func (x *extractor) symlink(name, linkTarget string) error {
	rel, ok := StripComponents(name, x.strip)
	if !ok {
		return nil
	}
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("%w: link %s -> %s", ErrUnsafePath, name, linkTarget)
	}

	dir, err := x.resolve(x.dest, path.Dir(rel), new(int))
	if err != nil || !x.inside(dir) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	link := filepath.Join(dir, path.Base(rel))
	if link == x.dest || !x.inside(link) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	resolved, err := x.resolve(dir, linkTarget, new(int))
	if err != nil || !x.inside(resolved) {
		return fmt.Errorf("%w: link %s -> %s", ErrUnsafePath, name, linkTarget)
	}

	if err := x.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", link, err)
	}
	if err := platform.CreateSymlink(x.fs, linkTarget, link); err != nil {
		// A dangling link cannot be copied either; the project is still usable.
		x.log.Debug().Err(err).Str("link", name).Msg("skipping symlink")
		return nil
	}
	if _, err := platform.ReadSymlinkTarget(x.fs, link); err == nil {
		x.links[link] = linkTarget
	}
	x.count++
	return nil
}

// target maps an archive member name to its destination path, following
// links written earlier in the same archive. ok is false when nothing
// remains after stripping.
func (x *extractor) target(name string) (string, bool, error) {
	rel, ok := StripComponents(name, x.strip)
	if !ok {
		return "", false, nil
	}
	target, err := x.resolve(x.dest, rel, new(int))
	if err != nil || !x.inside(target) {
		return "", false, fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, true, nil
}

// resolve walks rel from base one component at a time, substituting the
// links this extraction created, so ".." after a link climbs from the
// link's target rather than from its lexical parent.
func (x *extractor) resolve(base, rel string, hops *int) (string, error) {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			base = filepath.Dir(base)
			continue
		}
		base = filepath.Join(base, part)
		linkTarget, ok := x.links[base]
		if !ok {
			continue
		}
		*hops++
		if *hops > maxLinkHops {
			return "", fmt.Errorf("too many links resolving %s", rel)
		}
		next, err := x.resolve(filepath.Dir(base), linkTarget, hops)
		if err != nil {
			return "", err
		}
		base = next
	}
	return base, nil
}

func (x *extractor) inside(p string) bool {
	p = filepath.Clean(p)
	return p == x.dest || strings.HasPrefix(p, x.dest+string(os.PathSeparator))
}

// StripComponents removes n leading components from an archive member name.
// It returns false when nothing is left.
func StripComponents(name string, n int) (string, bool) {
	name = strings.ReplaceAll(name, `\`, "/")
	var parts []string
	for _, p := range strings.Split(name, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	if len(parts) <= n {
		return "", false
	}
	return path.Join(parts[n:]...), true
}
