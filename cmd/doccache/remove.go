package main

import (
	"fmt"

	"github.com/fwojciec/doccache"
)

// Run executes the remove command.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm removal\n")
		return doccache.Errorf(doccache.EINVALID, "use --force to confirm removal")
	}

	if err := deps.Catalog.Remove(deps.Ctx, deps.ClientID, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doccache.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed %q\n", c.Name)
	return nil
}
