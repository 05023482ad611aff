// Package pkg holds the libraries behind SketchStack, which turns a
// plain-language system description into editable architecture diagrams.
//
// # Overview
//
// A description goes to a local language model, the model's reply is
// validated and repaired into an architecture plan, the plan is derived
// into typed nodes and edges, laid out in swimlanes and rendered for two
// editors:
//
//	description
//	     ↓
//	[llm] chat with Ollama (optionally cached in [cache])
//	     ↓
//	[plan] schema validation with model-driven repair
//	     ↓
//	[diagram] nodes, edges, layers
//	     ↓
//	[layout] ranked, ordered positions ([dag] does crossing reduction)
//	     ↓
//	[render/drawio] mxGraph XML   [render/excalidraw] scene JSON   [render/nodelink] DOT and SVG
//
// [pipeline] runs those stages, records them through [observability] and
// keeps the result in a [session] store so later instructions can refine it.
//
// # Quick Start
//
//	client := llm.NewOllama(llm.OllamaConfig{Model: "llama3.1"})
//	runner := pipeline.NewRunner(client, session.NewMemoryStore(time.Hour, 100), nil, pipeline.DefaultOptions())
//	res, err := runner.Generate(ctx, pipeline.GenerateRequest{
//	    Description:   "A URL shortener with a Redis cache and Postgres",
//	    CloudProvider: "aws",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("shortener.drawio", []byte(res.Document), 0o644)
//
// Plans that already exist can be rendered without a model:
//
//	d, artifacts, err := pipeline.Build(p, pipeline.BuildOptions{Provider: plan.ProviderGCP})
//
// # Packages
//
// [plan] defines the architecture plan, its JSON Schema and the
// validate-and-repair loop. [errors] carries the stable error codes the HTTP
// API reports. [config] loads sketchstack.toml and the environment.
// [presets] ships example descriptions. [integrations/mcp] talks to the
// draw.io and Excalidraw MCP servers.
//
// [plan]: github.com/harishkotra/SketchStack/pkg/plan
// [errors]: github.com/harishkotra/SketchStack/pkg/errors
// [config]: github.com/harishkotra/SketchStack/pkg/config
// [presets]: github.com/harishkotra/SketchStack/pkg/presets
// [llm]: github.com/harishkotra/SketchStack/pkg/llm
// [cache]: github.com/harishkotra/SketchStack/pkg/cache
// [diagram]: github.com/harishkotra/SketchStack/pkg/diagram
// [layout]: github.com/harishkotra/SketchStack/pkg/layout
// [dag]: github.com/harishkotra/SketchStack/pkg/dag
// [render/drawio]: github.com/harishkotra/SketchStack/pkg/render/drawio
// [render/excalidraw]: github.com/harishkotra/SketchStack/pkg/render/excalidraw
// [render/nodelink]: github.com/harishkotra/SketchStack/pkg/render/nodelink
// [pipeline]: github.com/harishkotra/SketchStack/pkg/pipeline
// [observability]: github.com/harishkotra/SketchStack/pkg/observability
// [session]: github.com/harishkotra/SketchStack/pkg/session
// [integrations/mcp]: github.com/harishkotra/SketchStack/pkg/integrations/mcp
package pkg
