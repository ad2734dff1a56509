package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

type zipEntry struct {
	name    string
	content string
	nonUTF8 bool
}

func createZip(t *testing.T, entries ...zipEntry) string {
	t.Helper()

	zipPath := filepath.Join(t.TempDir(), "bundle.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, e := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		if err != nil {
			t.Fatalf("Failed to create entry %s: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write entry %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return zipPath
}

func visit(t *testing.T, zipPath, prefix string) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, prefix, nil, func(e *Entry) error {
		if e.Archive != zipPath {
			t.Errorf("Archive = %s, want %s", e.Archive, zipPath)
		}
		visited = append(visited, e.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := createZip(t,
		zipEntry{name: "docs/readme.md", content: "# Readme"},
		zipEntry{name: "docs/guide.md", content: "# Guide"},
		zipEntry{name: "docs/img/cat.png", content: "png"},
		zipEntry{name: "Docs/UPPER.md", content: "# Upper"},
		zipEntry{name: "index.md", content: "# Index"},
	)

	tests := []struct {
		name   string
		prefix string
		want   []string
	}{
		{"docs prefix", "docs/", []string{"docs/readme.md", "docs/guide.md", "docs/img/cat.png"}},
		{"nested prefix", "docs/img", []string{"docs/img/cat.png"}},
		{"case sensitive", "Docs/", []string{"Docs/UPPER.md"}},
		{"no match", "missing/", nil},
		{"everything", "", []string{"docs/readme.md", "docs/guide.md", "docs/img/cat.png", "Docs/UPPER.md", "index.md"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visit(t, zipPath, tt.prefix); !slices.Equal(got, tt.want) {
				t.Errorf("visited %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWalk_SkipsDirectories(t *testing.T) {
	zipPath := createZip(t,
		zipEntry{name: "chapters/"},
		zipEntry{name: "chapters/one.md", content: "# One"},
	)
	if got := visit(t, zipPath, ""); !slices.Equal(got, []string{"chapters/one.md"}) {
		t.Errorf("visited %v, want only file entry", got)
	}
}

func TestWalk_Content(t *testing.T) {
	zipPath := createZip(t, zipEntry{name: "a.md", content: "# Title\n\ntext\n"})

	err := Walk(zipPath, "", nil, func(e *Entry) error {
		rc, err := e.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return err
		}
		if buf.String() != "# Title\n\ntext\n" {
			t.Errorf("content = %q", buf.String())
		}
		if e.Size() != uint64(buf.Len()) {
			t.Errorf("Size() = %d, want %d", e.Size(), buf.Len())
		}
		return nil
	})
	if err != nil {
		t.Errorf("Walk() error = %v", err)
	}
}

func TestWalk_LegacyNames(t *testing.T) {
	raw, err := charmap.CodePage866.NewEncoder().String("Книга.md")
	if err != nil {
		t.Fatal(err)
	}
	zipPath := createZip(t, zipEntry{name: raw, content: "# Книга", nonUTF8: true})

	t.Run("decoded", func(t *testing.T) {
		var names []string
		err := Walk(zipPath, "", charmap.CodePage866, func(e *Entry) error {
			if e.DecodeErr != nil {
				t.Errorf("DecodeErr = %v", e.DecodeErr)
			}
			names = append(names, e.Name)
			return nil
		})
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if !slices.Equal(names, []string{"Книга.md"}) {
			t.Errorf("names = %q", names)
		}
	})

	t.Run("prefix applies to decoded name", func(t *testing.T) {
		count := 0
		if err := Walk(zipPath, "Книга", charmap.CodePage866, func(*Entry) error { count++; return nil }); err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if count != 1 {
			t.Errorf("visited %d entries, want 1", count)
		}
	})

	t.Run("raw without code page", func(t *testing.T) {
		if got := visit(t, zipPath, ""); !slices.Equal(got, []string{raw}) {
			t.Errorf("visited %q, want raw name", got)
		}
	})
}

func TestWalk_EarlyTermination(t *testing.T) {
	zipPath := createZip(t,
		zipEntry{name: "1.md"}, zipEntry{name: "2.md"}, zipEntry{name: "3.md"},
	)

	stopErr := errors.New("stop walking")
	visited := 0
	err := Walk(zipPath, "", nil, func(*Entry) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d entries, want 2", visited)
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	noop := func(*Entry) error { return nil }

	t.Run("nonexistent file", func(t *testing.T) {
		if err := Walk(filepath.Join(t.TempDir(), "missing.zip"), "", nil, noop); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("not a zip", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "invalid.zip")
		if err := os.WriteFile(name, []byte("# just markdown"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := Walk(name, "", nil, noop); err == nil {
			t.Error("expected error for invalid zip file")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := createZip(t, zipEntry{name: "ok.md"}, zipEntry{name: "../evil.md"})
		if err := Walk(zipPath, "", nil, noop); err == nil {
			t.Error("expected error for unsafe entry")
		}
	})
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"docs/guide.md", true},
		{"a..b/c.md", true},
		{"/etc/passwd", false},
		{`\windows\system.ini`, false},
		{"docs/../../x.md", false},
		{`docs\..\x.md`, false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
