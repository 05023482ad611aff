package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
	"github.com/harishkotra/SketchStack/pkg/plan"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// formatPlan writes the validated architecture plan itself.
const formatPlan = "plan"

// rendered is one diagram ready to be written to disk.
type rendered struct {
	Plan        plan.ArchitecturePlan
	Diagram     diagram.Plan
	Artifacts   *pipeline.Artifacts
	Orientation layout.Orientation
}

// written lists what writeOutputs produced.
type written struct {
	Files []string
	Links []*pipeline.ViewerLink
}

// writeOutputs writes each format as base plus the format's extension.
// Formats that only the editor can produce come back as links.
func writeOutputs(ctx context.Context, base string, formats []string, o rendered) (written, error) {
	var res written
	seen := make(map[string]bool)

	sess := &session.Session{
		ArchitecturePlan: o.Plan,
		DiagramPlan:      o.Diagram,
		Document:         o.Artifacts.Document,
		Scene:            o.Artifacts.SceneJSON,
	}

	for _, f := range formats {
		var (
			path string
			data []byte
		)
		if f == formatPlan {
			b, err := json.MarshalIndent(o.Plan, "", "  ")
			if err != nil {
				return res, fmt.Errorf("encode plan: %w", err)
			}
			path, data = base+".plan.json", append(b, '\n')
		} else {
			out, err := pipeline.Export(ctx, sess, f, o.Orientation)
			if err != nil {
				return res, fmt.Errorf("export %s: %w", f, err)
			}
			if out.Link != nil {
				res.Links = append(res.Links, out.Link)
				continue
			}
			path, data = base+filepath.Ext(out.Filename), out.Body
		}

		if seen[path] {
			continue
		}
		seen[path] = true
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", path, err)
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}

// outputBase strips a known extension from an --output value, or derives a
// base from the input file name.
func outputBase(outPath, input, fallback string) string {
	if outPath != "" {
		for _, ext := range []string{".plan.json", ".drawio", ".excalidraw", ".json", ".svg", ".dot"} {
			if strings.HasSuffix(outPath, ext) {
				return strings.TrimSuffix(outPath, ext)
			}
		}
		return outPath
	}
	if input != "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".plan")
	}
	return fallback
}

func (c *CLI) printWritten(w written) {
	for _, f := range w.Files {
		c.printFile(f)
	}
	for _, l := range w.Links {
		c.printDetail("%s", l.Message)
		c.printLink("draw.io", l.DrawioURL)
	}
}
