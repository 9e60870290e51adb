// Package dict lists the spell-check dictionaries nightshift can find.
package dict

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/locator"
)

type ListCmd struct {
	// Overridable in tests
	locator *locator.Locator
	exeDir  string
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	l := c.locator
	if l == nil {
		l = locator.New(afero.NewOsFs(), nil)
	}
	exeDir := c.exeDir
	if exeDir == "" {
		exeDir = locator.ExecutableDir()
	}

	dir, names := l.Dictionaries(exeDir)
	if dir == "" {
		fmt.Printf("No dictionaries directory found. Set %s to point at one.\n", constants.DictionariesEnvVar)
		return nil
	}

	fmt.Printf("Dictionaries in %s:\n", dir)
	if len(names) == 0 {
		fmt.Println("  (none)")
		return nil
	}
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
