package builder_test

import (
	"fmt"

	"github.com/matzehuels/skilltree/pkg/builder"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/similarity"
)

func ExampleBuildCategory() {
	items := []item.Item{
		{ID: "flames", Name: "Flames", Tier: item.TierNovice},
		{ID: "firebolt", Name: "Firebolt", Tier: item.TierApprentice},
		{ID: "fireball", Name: "Fireball", Tier: item.TierAdept},
		{ID: "incinerate", Name: "Incinerate", Tier: item.TierExpert},
	}
	opts := builder.Options{Seed: 42, Oracle: similarity.Uniform(0.5)}
	t, report, err := builder.BuildCategory("destruction", items, opts, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("root:", t.Root())
	fmt.Println("reachable:", len(t.Reachable()))
	fmt.Println("incinerate prereqs:", len(t.Node("incinerate").Prereqs))
	fmt.Println("rescued:", report.Rescued)
	// Output:
	// root: flames
	// reachable: 4
	// incinerate prereqs: 2
	// rescued: 0
}
