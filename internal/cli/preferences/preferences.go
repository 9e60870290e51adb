package preferences

import (
	"fmt"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/prefs"
)

type GetCmd struct {
	Key     string  `arg:"" help:"Preference key."`
	Default *string `help:"Value to print when the key is not set."`
}

func (c *GetCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	e, ok := store.Lookup(c.Key)
	if !ok {
		if c.Default != nil {
			fmt.Println(*c.Default)
			return nil
		}
		return fmt.Errorf("preference %q is not set", c.Key)
	}
	fmt.Println(e.Value)
	return nil
}

type SetCmd struct {
	Key   string `arg:"" help:"Preference key."`
	Value string `arg:"" help:"New value."`
	Kind  string `help:"Value kind: bool, int, double or string. Defaults to the stored kind, else string."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	kind := prefs.KindString
	if c.Kind != "" {
		if kind, err = prefs.ParseKind(c.Kind); err != nil {
			return err
		}
	} else if existing, ok := store.Lookup(c.Key); ok {
		kind = existing.Kind
	}

	e, err := prefs.NewEntry(c.Key, kind, c.Value)
	if err != nil {
		return err
	}
	store.Set(e)

	// Writes never fail loudly, so confirm the value landed
	if got, ok := store.Lookup(c.Key); !ok || got != e {
		return fmt.Errorf("failed to save preference %q, see the log for details", c.Key)
	}
	fmt.Printf("✓ %s = %s (%s)\n", e.Key, e.Value, e.Kind)
	return nil
}

type UnsetCmd struct {
	Key string `arg:"" help:"Preference key."`
}

func (c *UnsetCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}
	if !store.Has(c.Key) {
		fmt.Printf("%s is not set\n", c.Key)
		return nil
	}
	store.Remove(c.Key)
	fmt.Printf("✓ Removed %s\n", c.Key)
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	keys := store.Keys()
	if len(keys) == 0 {
		fmt.Println("No preferences set.")
		return nil
	}

	fmt.Printf("Preferences (%s):\n", store.Path())
	for _, key := range keys {
		e, ok := store.Lookup(key)
		if !ok {
			continue
		}
		fmt.Printf("  %-20s %-7s %s\n", e.Key, e.Kind, e.Value)
	}
	return nil
}
