// Package platform wraps the OS-specific bits the scaffolder touches:
// permission bits, symlinks extracted from archives, and the identity of the
// current user. Filesystem helpers operate on an afero.Fs so tests can use an
// in-memory tree. On Windows chmod is a no-op and symlinks fall back to a
// copy of the target file.
package platform
