package theme_test

import (
	"fmt"

	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/theme"
)

func ExampleDiscover() {
	items := []item.Item{
		{ID: "flames", Name: "Flames", TextFields: []string{"fire damage"}},
		{ID: "firebolt", Name: "Firebolt", TextFields: []string{"fire damage"}},
		{ID: "frostbite", Name: "Frostbite", TextFields: []string{"frost damage"}},
		{ID: "icespike", Name: "Ice Spike", TextFields: []string{"frost damage"}},
		{ID: "sparks", Name: "Sparks", TextFields: []string{"shock damage"}},
	}
	a := theme.Discover(items, theme.Options{})
	for _, th := range a.Themes {
		fmt.Println(th.Label, th.Members)
	}
	// Output:
	// fire [flames firebolt]
	// frost [frostbite icespike]
	// shock [sparks]
}
