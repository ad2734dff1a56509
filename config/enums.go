package config

//go:generate go tool go-enum --marshal --names --values --nocase --mustparse

// What to do with same-document links whose target bookmark was never
// created.
// ENUM(degrade, fail)
type DanglingLinkPolicy int

// How thematic breaks are rendered.
// ENUM(border, pageBreak)
type HorizontalRuleMode int
