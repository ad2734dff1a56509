// Package convert drives conversion of markdown sources into docx documents.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"mdocx/archive"
	"mdocx/content"
	"mdocx/convert/docx"
	"mdocx/state"
)

var markdownExts = []string{".md", ".markdown", ".mdown", ".mkd"}

func isMarkdownFile(path string) bool {
	return slices.Contains(markdownExts, strings.ToLower(filepath.Ext(path)))
}

// Run converts src (markdown file, zip archive with markdown files or directory
// tree with both) and puts results into dst directory, current directory when
// dst is empty. src may point inside an archive: "bundle.zip/docs" converts
// only entries under "docs/".
func Run(ctx context.Context, src, dst string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	env.Overwrite = env.Overwrite || env.Cfg.Document.Overwrite

	// Legacy sources may be in archaic code page
	if cp := env.Cfg.Document.InputCharset; len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
			env.Cfg.Document.InputCharset = ""
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting sources from", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process determines the input type (directory, archive or single file) and
// processes accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	head, tail, err := splitArchivePath(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	fi, err := os.Stat(head)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", head, err)
	}

	if fi.Mode().IsDir() {
		if len(tail) > 0 {
			return fmt.Errorf("input source was not found (%s): %w", src, fs.ErrNotExist)
		}
		if err := processDir(ctx, head, dst, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		return nil
	}

	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", head)
	}

	if !isMarkdownFile(head) {
		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to detect input type (%s): %w", head, err)
		}
		if arc {
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}
	}
	if len(tail) > 0 {
		return fmt.Errorf("input source was not found (%s): %w", src, fs.ErrNotExist)
	}
	if !isMarkdownFile(head) {
		log.Warn("Input does not look like markdown, trying anyway", zap.String("file", head))
	}

	file, err := os.Open(head)
	if err != nil {
		return fmt.Errorf("unable to open input file: %w", err)
	}
	defer file.Close()

	return processFile(ctx, file, filepath.Base(head), dst, log)
}

// splitArchivePath separates existing part of the path from the remainder,
// which is returned in slash form to be used as a prefix inside archive.
func splitArchivePath(src string) (head, tail string, err error) {
	head = src
	for {
		if _, err := os.Stat(head); err == nil {
			return head, tail, nil
		}
		dir, file := filepath.Split(head)
		dir = strings.TrimSuffix(dir, string(filepath.Separator))
		if len(dir) == 0 || dir == head {
			return "", "", fs.ErrNotExist
		}
		tail = path.Join(file, tail)
		head = dir
	}
}

// isArchiveFile checks file signature, extension is not reliable here.
func isArchiveFile(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	// 262 bytes is enough for any signature filetype knows
	buf := make([]byte, 262)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(buf[:n], "zip"), nil
}

// processArchive converts markdown entries of zip archive located under
// prefix. "base" is relative location of the archive in the processed tree
// and becomes part of the output path. Failure to convert single entry is
// logged and does not stop processing.
func processArchive(ctx context.Context, arc, prefix, base, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	count := 0
	err := archive.Walk(arc, prefix, env.CodePage, func(e *archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.DecodeErr != nil {
			log.Warn("Unable to decode entry name, using as is", zap.String("archive", arc), zap.String("entry", e.Name), zap.Error(e.DecodeErr))
		}
		if !isMarkdownFile(e.Name) {
			log.Debug("Skipping entry, not recognized as markdown", zap.String("archive", arc), zap.String("entry", e.Name))
			return nil
		}

		count++

		r, err := e.Open()
		if err != nil {
			log.Error("Unable to process entry", zap.String("archive", arc), zap.String("entry", e.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		src := filepath.Join(base, filepath.FromSlash(e.Name))
		if err := processFile(ctx, r, src, dst, log); err != nil {
			log.Error("Unable to process entry", zap.String("archive", arc), zap.String("entry", e.Name), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("archive", arc), zap.String("prefix", prefix))
	}
	return nil
}

// processDir walks directory tree finding markdown files and archives and
// processes them. Failure to convert single file is logged and does not stop
// processing.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		if !isMarkdownFile(path) {
			if arc, err := isArchiveFile(path); err == nil && arc {
				count++
				base := strings.TrimSuffix(src, filepath.Ext(src))
				if err := processArchive(ctx, path, "", base, dst, log); err != nil {
					log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				}
				return nil
			}
			log.Debug("Skipping file, not recognized as markdown", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		if err := processFile(ctx, file, src, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processFile converts single markdown source. "src" is path of the source
// relative to the original path (just base name when a file was specified),
// "dst" is the destination directory.
func processFile(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// one broken document should not stop processing of the rest
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	c, err := content.Prepare(ctx, r, src, log)
	if err != nil {
		return fmt.Errorf("unable to parse markdown source (%s): %w", src, err)
	}

	outputName = buildOutputPath(c, src, dst, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := docx.Generate(ctx, c, outputName, &env.Cfg.Document, log); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s", filepath.Base(outputName)), outputName)
	}
	return nil
}
