package main

import (
	"fmt"

	"github.com/fwojciec/doccache"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	doc, err := deps.Catalog.AddOrUpdate(deps.Ctx, deps.ClientID, doccache.UpsertRequest{
		Name:        c.Name,
		SourceURL:   c.URL,
		AltURL:      c.AltURL,
		Description: c.Description,
		Category:    c.Category,
		Tags:        c.Tag,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	if doc.UpdateError != "" {
		fmt.Fprintf(deps.Stdout, "Registered %q, but fetching content failed: %s\n", doc.Name, doc.UpdateError)
		fmt.Fprintf(deps.Stdout, "Run 'doccache refresh %s' to retry.\n", doc.Name)
		return nil
	}

	if content := doc.CurrentContent(); content != "" {
		fmt.Fprintf(deps.Stdout, "Registered %q with %d bytes of content\n", doc.Name, len(content))
	} else {
		fmt.Fprintf(deps.Stdout, "Registered %q\n", doc.Name)
	}
	return nil
}
