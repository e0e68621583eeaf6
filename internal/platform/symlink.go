package platform

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// CreateSymlink creates link pointing to target. A relative target is
// interpreted relative to the directory containing link, as the OS does.
//
// When fs cannot create symlinks (in-memory filesystems, Windows without
// developer mode) the target file is copied to link instead.
func CreateSymlink(fs afero.Fs, target, link string) error {
	if l, ok := fs.(afero.Linker); ok {
		if err := l.SymlinkIfPossible(target, link); err == nil {
			return nil
		}
	}

	if err := copyFileForSymlink(fs, target, link); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}
	return nil
}

// ReadSymlinkTarget returns the target of a symlink, or an error when fs
// does not support reading links or path is not one.
func ReadSymlinkTarget(fs afero.Fs, path string) (string, error) {
	r, ok := fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("filesystem %s cannot read links", fs.Name())
	}
	return r.ReadlinkIfPossible(path)
}

func copyFileForSymlink(fs afero.Fs, src, dst string) error {
	resolvedSrc := src
	if !filepath.IsAbs(src) {
		resolvedSrc = filepath.Join(filepath.Dir(dst), src)
	}

	in, err := fs.Open(resolvedSrc)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
