// Package wml builds WordprocessingML documents: element factories, styles,
// relationships, footnotes and the final zip container.
package wml

import "path"

// PartName is a part location inside the package.
type PartName string

const (
	PartDocument  PartName = "word/document.xml"
	PartStyles    PartName = "word/styles.xml"
	PartFootnotes PartName = "word/footnotes.xml"
	PartCore      PartName = "docProps/core.xml"
	PartApp       PartName = "docProps/app.xml"
	PartTypes     PartName = "[Content_Types].xml"
	PartRootRels  PartName = "_rels/.rels"
)

// RelsFor returns location of the relationships part for given part.
func RelsFor(part PartName) PartName {
	dir, file := path.Split(string(part))
	return PartName(dir + "_rels/" + file + ".rels")
}

const (
	NSMain    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSRel     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPkgRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSCore    = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	NSDC      = "http://purl.org/dc/elements/1.1/"
	NSDCTerms = "http://purl.org/dc/terms/"
	NSXSI     = "http://www.w3.org/2001/XMLSchema-instance"
	NSApp     = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
)

const (
	RelOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RelFootnotes      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	RelTypeHyperlink  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	RelApp            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RelCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
)

const (
	ctDocument  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctFootnotes = "application/vnd.openxmlformats-officedocument.wordprocessingml.footnotes+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
	ctXML       = "application/xml"
)
