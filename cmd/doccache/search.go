package main

import (
	"fmt"

	"github.com/fwojciec/doccache"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	var filter doccache.DocumentFilter
	if c.Category != "" {
		filter.Category = &c.Category
	}
	if c.Tag != "" {
		filter.Tag = &c.Tag
	}

	results, err := deps.Catalog.Search(deps.Ctx, deps.ClientID, c.Query, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No documents match %q.\n", c.Query)
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s (score %.0f)\n", r.Document.Name, r.Score)
		for _, m := range r.Matches {
			fmt.Fprintf(deps.Stdout, "  - %s\n", m)
		}
	}
	return nil
}

// Run executes the lines command.
func (c *LinesCmd) Run(deps *Dependencies) error {
	matches, err := deps.Catalog.SearchLines(deps.Ctx, deps.ClientID, c.Name, c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	if len(matches) == 0 {
		fmt.Fprintf(deps.Stdout, "No lines of %q match %q.\n", c.Name, c.Query)
		return nil
	}

	for _, m := range matches {
		fmt.Fprintf(deps.Stdout, "%d: %s\n", m.Line, m.Content)
	}
	return nil
}
