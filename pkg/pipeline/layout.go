package pipeline

import (
	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
)

// Arrange positions the nodes of d. Zero-sized options fall back to
// [layout.DefaultOptions].
func Arrange(d diagram.Plan, opts layout.Options) []diagram.PositionedNode {
	if opts.NodeWidth <= 0 || opts.NodeHeight <= 0 {
		orientation, ranking, orderer := opts.Orientation, opts.Ranking, opts.Orderer
		opts = layout.DefaultOptions()
		if orientation != "" {
			opts.Orientation = orientation
		}
		if ranking != "" {
			opts.Ranking = ranking
		}
		opts.Orderer = orderer
	}
	return layout.Layout(d.Nodes, d.Edges, opts)
}
