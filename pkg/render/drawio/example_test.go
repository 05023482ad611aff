package drawio_test

import (
	"fmt"
	"strings"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/plan"
	"github.com/harishkotra/SketchStack/pkg/render/drawio"
)

func ExampleRender() {
	nodes := []diagram.Node{
		{ID: "web", Label: "Web", Type: plan.ComponentFrontend},
		{ID: "db", Label: "DB", Type: plan.ComponentDatabase},
	}
	edges := []diagram.Edge{
		{From: "web", To: "db", Protocol: "SQL"},
		{From: "web", To: "nowhere"},
	}

	doc := drawio.Render(layout.Layout(nodes, edges, layout.DefaultOptions()), edges, drawio.Options{})

	fmt.Println("lanes:", strings.Count(doc, "swimlane;"))
	fmt.Println("connectors:", strings.Count(doc, `edge="1"`))
	// Output:
	// lanes: 2
	// connectors: 1
}

func ExampleIconStyle() {
	style, cloud := drawio.IconStyle(plan.ComponentQueue, plan.ProviderAWS)
	fmt.Println(style, cloud)
	// Output:
	// shape=mxgraph.aws4.sqs;aspect=fixed;resizable=0;fontStyle=1; true
}
