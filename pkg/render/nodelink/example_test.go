package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tooltree/pkg/core/frame"
	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/render/nodelink"
)

func ExampleToDOT() {
	f, _ := frame.FromColumns(
		[]string{"team", "service", "cost"},
		[]any{
			[]string{"web", "web", "data"},
			[]string{"frontend", "api", "etl"},
			[]int{30, 20, 10},
		},
	)
	d, _ := treemap.Build(f, treemap.Options{
		Levels: []string{"team", "service"},
		Metric: "cost",
		Root:   "infra",
	})

	dot := nodelink.ToDOT(d, nil, nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "infra" -> "web";
	// "infra" -> "data";
	// "web" -> "web__frontend";
	// "web" -> "web__api";
	// "data" -> "data__etl";
}
