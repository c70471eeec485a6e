package partfile

import (
	"os"
	"time"

	"github.com/absfs/absfs"
)

// osFileSystem is the default absfs.FileSystem backing a Partfile when
// Options.FileSystem is left nil. It forwards every call directly to the
// os package, with no root translation — Partfile always hands it fully
// joined, absolute-or-relative-as-given paths.
//
// Modeled on the small simpleFS adapter in absfs/encryptfs's examples/basic
// (not part of this repository), generalized to skip the root prefix that
// example needed for sandboxing a demo directory.
type osFileSystem struct{}

func newOSFileSystem() absfs.FileSystem {
	return osFileSystem{}
}

func (osFileSystem) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	return os.OpenFile(name, flag, perm)
}

func (osFileSystem) Open(name string) (absfs.File, error) {
	return os.OpenFile(name, os.O_RDONLY, 0)
}

func (osFileSystem) Create(name string) (absfs.File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (osFileSystem) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(name, perm)
}

func (osFileSystem) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(name, perm)
}

func (osFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (osFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (osFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (osFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (osFileSystem) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(name, mode)
}

func (osFileSystem) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

func (osFileSystem) Chown(name string, uid, gid int) error {
	return os.Chown(name, uid, gid)
}

func (osFileSystem) Truncate(name string, size int64) error {
	return os.Truncate(name, size)
}

func (osFileSystem) Separator() uint8 {
	return os.PathSeparator
}

func (osFileSystem) ListSeparator() uint8 {
	return os.PathListSeparator
}

func (osFileSystem) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (osFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (osFileSystem) TempDir() string {
	return os.TempDir()
}

// pathExists reports whether name exists on fs, treating any stat error
// other than "not exists" as "unknown, assume absent" is wrong for safety,
// so such errors are surfaced to the caller instead.
func pathExists(fs absfs.FileSystem, name string) (bool, error) {
	_, err := fs.Stat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
