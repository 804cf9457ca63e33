package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// PreserveCopy copies src to a dst that must not exist yet, verifying size and
// SHA256, then applies the source permission bits and access/modification
// times. dst is removed on any failure after it was created, so a failed copy
// never leaves a partial file behind. src is only ever opened for reading.
func PreserveCopy(fsys afero.Fs, src, dst string) error {
	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}

	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	fail := func(err error) error {
		_ = out.Close()
		_ = fsys.Remove(dst)
		return err
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = fsys.Remove(dst)
		return err
	}
	if written != srcInfo.Size() {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = fsys.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	if err := fsys.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		_ = fsys.Remove(dst)
		return fmt.Errorf("chmod: %w", err)
	}
	mtime := srcInfo.ModTime()
	atime := accessTime(srcInfo, mtime)
	if err := fsys.Chtimes(dst, atime, mtime); err != nil {
		_ = fsys.Remove(dst)
		return fmt.Errorf("chtimes: %w", err)
	}
	return nil
}
