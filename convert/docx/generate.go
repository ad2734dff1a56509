// Package docx renders prepared markdown content into WordprocessingML
// package.
package docx

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/russross/blackfriday/v2"
	"go.uber.org/zap"

	"mdocx/config"
	"mdocx/content"
	"mdocx/render"
	"mdocx/state"
	"mdocx/wml"
)

type options struct {
	extender render.AttributeExtender[*blackfriday.Node]
	modified time.Time
}

// Option changes how document is built.
type Option func(*options)

// WithAttributeExtender installs hook customizing attributes of generated
// elements.
func WithAttributeExtender(ext render.AttributeExtender[*blackfriday.Node]) Option {
	return func(o *options) {
		o.extender = ext
	}
}

// WithModified sets document modification time stored in core properties.
func WithModified(t time.Time) Option {
	return func(o *options) {
		o.modified = t
	}
}

// Build renders content into new package. Package is not written anywhere.
func Build(ctx context.Context, c *content.Content, cfg *config.DocumentConfig, log *zap.Logger, opts ...Option) (*wml.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	pkg := wml.NewPackage()
	pkg.Title = c.Title
	pkg.Creator = cfg.Metainformation.Creator
	pkg.Modified = o.modified

	rc := render.New(pkg, cfg, nodeID, log)
	if o.extender != nil {
		rc.SetAttributeExtender(o.extender)
	}

	g := &generator{
		ctx:   ctx,
		c:     c,
		cfg:   cfg,
		log:   log.Named("docx"),
		rc:    rc,
		notes: make(map[string]*render.Footnote),
	}
	if err := g.node(c.Doc); err != nil {
		return nil, fmt.Errorf("unable to render %s: %w", c.SrcName, err)
	}
	err := rc.Finalize()

	if env, ok := state.LookupEnv(ctx); ok && env.Rpt != nil {
		env.Rpt.StoreData(filepath.Base(c.SrcName)+"_rendered", []byte(rc.String()))
	}
	if err != nil {
		return nil, fmt.Errorf("unable to finalize %s: %w", c.SrcName, err)
	}
	return pkg, nil
}

// Generate builds document and writes it to outputPath.
func Generate(ctx context.Context, c *content.Content, outputPath string, cfg *config.DocumentConfig, log *zap.Logger, opts ...Option) (err error) {
	glog := log.Named("docx")

	glog.Info("DOCX generation starting", zap.String("output", outputPath))
	defer func(start time.Time) {
		if err == nil {
			glog.Info("DOCX generation completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	pkg, err := Build(ctx, c, cfg, log, opts...)
	if err != nil {
		return err
	}

	// WriteFile creates missing directories
	if err := pkg.WriteFile(outputPath, cfg.FixZip); err != nil {
		return err
	}

	if digest, err := pkg.Digest(); err == nil {
		glog.Debug("DOCX written", zap.String("output", outputPath), zap.String("digest", digest))
	}
	return nil
}
