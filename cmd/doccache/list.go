package main

import (
	"fmt"

	"github.com/fwojciec/doccache"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter doccache.DocumentFilter
	if c.Category != "" {
		filter.Category = &c.Category
	}
	if c.Tag != "" {
		filter.Tag = &c.Tag
	}

	docs, err := deps.Catalog.List(deps.Ctx, deps.ClientID, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents found. Use 'doccache add' to register one.")
		return nil
	}

	for _, doc := range docs {
		status := "cached"
		switch {
		case doc.UpdateError != "":
			status = "failed"
		case doc.CurrentContent() == "":
			status = "empty"
		}
		fmt.Fprintf(deps.Stdout, "%-30s  %-8s  %s\n", doc.Name, status, doc.SourceURL)
	}
	return nil
}
