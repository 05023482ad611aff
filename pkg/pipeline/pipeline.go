// Package pipeline provides the core diagram pipeline for SketchStack.
//
// This package implements the complete extract → validate → derive → layout
// → render pipeline used by both the CLI and the HTTP server. Keeping it in
// one place gives every entry point the same stage order, logging and
// error codes.
//
// # Architecture
//
// A run consists of these stages, executed strictly in order:
//
//  1. Extract: ask the language model for an architecture plan
//  2. Validate: normalize, parse and schema-check the reply, repairing it
//     through the model when it does not conform
//  3. Derive: map components to layered diagram nodes
//  4. Layout: assign every node a rank, an order and a position
//  5. Render: produce the draw.io document, the Excalidraw scene and the
//     editor links
//
// Refinement re-enters at Extract with the stored plan and an instruction,
// then runs the remaining stages from scratch.
//
// # Usage
//
//	runner := pipeline.NewRunner(model, store, logger, pipeline.DefaultOptions())
//	res, err := runner.Generate(ctx, pipeline.GenerateRequest{
//	    Description: "A RAG chatbot over internal docs",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.SessionID, res.ShareURL)
//
// Stages 3 to 5 need no model and are exposed as [Build] for offline use.
package pipeline

import (
	"time"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/plan"
	"github.com/harishkotra/SketchStack/pkg/render/excalidraw"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// Stage names reported to observability hooks.
const (
	StageExtract  = "extract"
	StageValidate = "validate"
	StageDerive   = "derive"
	StageLayout   = "layout"
	StageRender   = "render"
	StagePersist  = "persist"
)

// Options configures a [Runner].
type Options struct {
	Layout layout.Options

	// MaxRepairAttempts is used as given; zero disables repair.
	MaxRepairAttempts int

	SessionTTL time.Duration

	// DefaultProvider applies when a generate request names none.
	DefaultProvider plan.Provider

	// Model overrides the client's default model. Requests may override it
	// again.
	Model string

	// IDs returns the element id generator for one scene. Nil means a
	// clock-seeded random generator per render.
	IDs func() excalidraw.IDGenerator

	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the standard layout, repair budget and session
// lifetime.
func DefaultOptions() Options {
	return Options{
		Layout:            layout.DefaultOptions(),
		MaxRepairAttempts: plan.DefaultMaxRepairAttempts,
		SessionTTL:        session.DefaultTTL,
		DefaultProvider:   plan.ProviderNeutral,
	}
}

// SetDefaults fills unset fields. It leaves MaxRepairAttempts alone.
func (o *Options) SetDefaults() {
	if o.Layout.NodeWidth <= 0 || o.Layout.NodeHeight <= 0 {
		o.Layout = layout.DefaultOptions()
	}
	if o.MaxRepairAttempts < 0 {
		o.MaxRepairAttempts = 0
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.DefaultProvider == "" {
		o.DefaultProvider = plan.ProviderNeutral
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// GenerateRequest asks for a new diagram.
type GenerateRequest struct {
	Description       string `json:"description"`
	CloudProvider     string `json:"cloudProvider,omitempty"`
	ArchitectureStyle string `json:"architectureStyle,omitempty"`
	Model             string `json:"model,omitempty"`
}

// Validate checks the description and parses the hints. An empty provider
// resolves to fallback; an empty style means "trust the model".
func (r GenerateRequest) Validate(fallback plan.Provider) (plan.Provider, plan.ArchitectureStyle, error) {
	if err := sserrors.ValidateDescription(r.Description); err != nil {
		return "", "", err
	}
	provider, err := parseProvider(r.CloudProvider, fallback)
	if err != nil {
		return "", "", err
	}
	if r.ArchitectureStyle != "" && !plan.ValidStyle(r.ArchitectureStyle) {
		return "", "", sserrors.New(sserrors.ErrCodeInvalidInput, "unknown architecture style %q", r.ArchitectureStyle)
	}
	return provider, plan.ArchitectureStyle(r.ArchitectureStyle), nil
}

// RefineRequest asks for a change to an existing diagram.
type RefineRequest struct {
	SessionID     string `json:"sessionId"`
	Instruction   string `json:"instruction"`
	CloudProvider string `json:"cloudProvider,omitempty"`
	Model         string `json:"model,omitempty"`
}

// Validate checks the instruction and the session id. The provider is
// resolved later against the session.
func (r RefineRequest) Validate() error {
	if err := sserrors.ValidateInstruction(r.Instruction); err != nil {
		return err
	}
	if err := sserrors.ValidateSessionID(r.SessionID); err != nil {
		return err
	}
	if r.CloudProvider != "" {
		if _, ok := plan.ParseProvider(r.CloudProvider); !ok {
			return sserrors.New(sserrors.ErrCodeInvalidInput, "unknown cloud provider %q", r.CloudProvider)
		}
	}
	return nil
}

func parseProvider(s string, fallback plan.Provider) (plan.Provider, error) {
	if s == "" {
		return fallback, nil
	}
	p, ok := plan.ParseProvider(s)
	if !ok {
		return "", sserrors.New(sserrors.ErrCodeInvalidInput, "unknown cloud provider %q", s)
	}
	return p, nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	SessionID string
	Provider  plan.Provider

	// Plan is the validated plan after any style override.
	Plan    plan.ArchitecturePlan
	Diagram diagram.Plan

	Artifacts

	Stats Stats
}

// Stats contains timing and repair information for one run.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	Attempts     int
	Repairs      int
	ExtractTime  time.Duration
	ValidateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}
