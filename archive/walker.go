// Package archive walks markdown bundles packed into zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding"
)

// Entry is a file found in archive.
type Entry struct {
	// Archive is path to archive passed to Walk.
	Archive string
	// Name is entry path inside archive, decoded from legacy code page when
	// entry is not marked as UTF-8.
	Name string
	// DecodeErr is set when Name could not be decoded and raw name is used.
	DecodeErr error

	file *zip.File
}

func (e *Entry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}

func (e *Entry) Size() uint64 {
	return e.file.UncompressedSize64
}

// WalkFunc is called for each entry visited by Walk. If an error is returned,
// processing stops.
type WalkFunc func(e *Entry) error

// Walk calls walkFn for every regular file in the archive with name starting
// with prefix. Zip does not define name encoding, names of entries without
// UTF-8 flag are decoded with cp when it is not nil. Archives with absolute
// entry names or names containing ".." are rejected.
func Walk(archive, prefix string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}

		e := &Entry{Archive: archive, Name: f.Name, file: f}
		if cp != nil && f.NonUTF8 {
			if n, err := cp.NewDecoder().String(f.Name); err == nil {
				e.Name = n
			} else {
				e.DecodeErr = err
			}
		}
		if !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		if err := walkFn(e); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}
