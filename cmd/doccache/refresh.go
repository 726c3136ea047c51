package main

import (
	"fmt"

	"github.com/fwojciec/doccache"
)

// Run executes the refresh command.
func (c *RefreshCmd) Run(deps *Dependencies) error {
	results, err := deps.Catalog.Refresh(deps.Ctx, deps.ClientID, doccache.RefreshOptions{
		Name:  c.Name,
		Force: c.Force,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	for _, r := range results {
		switch {
		case r.Err != "":
			fmt.Fprintf(deps.Stdout, "%-30s  failed: %s\n", r.Name, r.Err)
		case r.NotModified:
			fmt.Fprintf(deps.Stdout, "%-30s  not modified\n", r.Name)
		case r.Refreshed:
			fmt.Fprintf(deps.Stdout, "%-30s  refreshed\n", r.Name)
		default:
			fmt.Fprintf(deps.Stdout, "%-30s  skipped (no source URL)\n", r.Name)
		}
	}
	return nil
}

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Catalog.Stats(deps.Ctx, deps.ClientID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Documents:        %d\n", stats.Documents)
	fmt.Fprintf(deps.Stdout, "Cached documents: %d\n", stats.CachedDocuments)
	fmt.Fprintf(deps.Stdout, "Cached bytes:     %d\n", stats.CachedBytes)
	fmt.Fprintf(deps.Stdout, "Failed documents: %d\n", stats.FailedDocuments)
	if !stats.LastUpdated.IsZero() {
		fmt.Fprintf(deps.Stdout, "Last updated:     %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
