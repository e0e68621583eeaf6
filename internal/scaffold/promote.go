package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spark-development/puzzle-cli/internal/platform"
	"github.com/spf13/afero"
)

// promote moves the staged project to the destination. When staging and
// destination live on different filesystems the tree is copied instead.
func (s *Scaffolder) promote(_ context.Context, r *run) error {
	src, dst := r.res.StagingPath, r.res.OutputFolder

	if err := s.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", dst, err)
	}

	err := s.fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}

	s.log.Debug().Str("from", src).Str("to", dst).Msg("cross-device move, copying")
	if err := copyTree(s.fs, src, dst); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := s.fs.RemoveAll(src); err != nil {
		s.log.Debug().Err(err).Str("path", src).Msg("staging cleanup failed")
	}
	return nil
}

// copyTree recursively copies src to dst, preserving file modes and
// recreating symlinks.
func copyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return fs.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := platform.ReadSymlinkTarget(fs, path)
			if err != nil {
				return err
			}
			return platform.CreateSymlink(fs, link, target)
		case info.Mode().IsRegular():
			return copyFile(fs, path, target, info.Mode().Perm())
		}
		// Skip sockets, devices and other special files.
		return nil
	})
}

func copyFile(fs afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return platform.Chmod(fs, dst, mode)
}
