package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/plan"
	"github.com/harishkotra/SketchStack/pkg/render/drawio"
	"github.com/harishkotra/SketchStack/pkg/render/excalidraw"
)

// BuildOptions configures [Build].
type BuildOptions struct {
	Provider plan.Provider
	Layout   layout.Options
	// IDs and Now are passed to the Excalidraw renderer.
	IDs excalidraw.IDGenerator
	Now func() time.Time
}

// Artifacts are the rendered forms of one diagram.
type Artifacts struct {
	Nodes []diagram.PositionedNode

	// Document is the mxGraph XML.
	Document string
	Scene    excalidraw.Scene
	// SceneJSON is Scene encoded.
	SceneJSON json.RawMessage

	ShareURL  string
	ViewerURL string
}

// Build derives, lays out and renders a validated plan. It calls no
// external service.
func Build(p plan.ArchitecturePlan, opts BuildOptions) (diagram.Plan, *Artifacts, error) {
	d := diagram.Derive(p)
	nodes := Arrange(d, opts.Layout)
	a, err := Render(nodes, d.Edges, opts)
	if err != nil {
		return d, nil, err
	}
	return d, a, nil
}

// Render turns positioned nodes into both documents and the editor links.
func Render(nodes []diagram.PositionedNode, edges []diagram.Edge, opts BuildOptions) (*Artifacts, error) {
	doc := drawio.Render(nodes, edges, drawio.Options{
		Provider:    opts.Provider,
		Orientation: opts.Layout.Orientation,
	})
	scene := excalidraw.Render(nodes, edges, excalidraw.Options{IDs: opts.IDs, Now: opts.Now})
	sceneJSON, err := json.Marshal(scene)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	return &Artifacts{
		Nodes:     nodes,
		Document:  doc,
		Scene:     scene,
		SceneJSON: sceneJSON,
		ShareURL:  drawio.EditorURL(doc, drawio.LinkOptions{}),
		ViewerURL: drawio.ViewerURL(doc),
	}, nil
}
