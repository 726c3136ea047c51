package main

import (
	"context"
	"io"

	"github.com/fwojciec/doccache"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	ClientID string
	Catalog  doccache.CatalogService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Add     AddCmd     `cmd:"" help:"Register a document and fetch its content"`
	List    ListCmd    `cmd:"" help:"List registered documents"`
	Remove  RemoveCmd  `cmd:"" help:"Remove a document and its cached content"`
	Search  SearchCmd  `cmd:"" help:"Search documents by relevance"`
	Lines   LinesCmd   `cmd:"" help:"Search one document's content line by line"`
	Refresh RefreshCmd `cmd:"" help:"Re-fetch cached content"`
	Stats   StatsCmd   `cmd:"" help:"Show catalog statistics"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Name        string   `arg:"" help:"Document name"`
	URL         string   `arg:"" optional:"" help:"Source URL (HTTP, file://, GitHub blob/gist, npm package)"`
	AltURL      string   `help:"Alternate URL used when the source is rate limited"`
	Description string   `short:"d" help:"Document description"`
	Category    string   `short:"c" help:"Document category"`
	Tag         []string `short:"t" name:"tag" help:"Document tag (repeatable)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Category string `short:"c" help:"Filter by category"`
	Tag      string `short:"t" help:"Filter by tag"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	Name  string `arg:"" help:"Document name"`
	Force bool   `help:"Confirm removal"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string `arg:"" help:"Free-text query"`
	Category string `short:"c" help:"Filter by category"`
	Tag      string `short:"t" help:"Filter by tag"`
}

// LinesCmd is the "lines" subcommand.
type LinesCmd struct {
	Name  string `arg:"" help:"Document name"`
	Query string `arg:"" help:"Free-text query"`
}

// RefreshCmd is the "refresh" subcommand.
type RefreshCmd struct {
	Name  string `arg:"" optional:"" help:"Document name (all documents when omitted)"`
	Force bool   `short:"f" help:"Bypass conditional validators"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
