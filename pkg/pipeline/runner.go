package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/llm"
	"github.com/harishkotra/SketchStack/pkg/observability"
	"github.com/harishkotra/SketchStack/pkg/plan"
	"github.com/harishkotra/SketchStack/pkg/session"
)

// Runner executes generate and refine requests against a model and a
// session store.
//
// The Runner keeps no per-request state. Multiple goroutines can use the
// same Runner; refinements of one session are serialized by Locks.
type Runner struct {
	LLM      llm.Client
	Sessions session.Store
	Locks    *session.Locks
	Logger   *log.Logger
	Options  Options
}

// NewRunner creates a runner. A nil store means an in-memory store with the
// default TTL and cap; a nil logger means log.Default().
func NewRunner(c llm.Client, store session.Store, logger *log.Logger, opts Options) *Runner {
	opts.SetDefaults()
	if store == nil {
		store = session.NewMemoryStore(opts.SessionTTL, session.DefaultMaxSessions)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		LLM:      c,
		Sessions: store,
		Locks:    session.NewLocks(),
		Logger:   logger,
		Options:  opts,
	}
}

// Generate runs the full pipeline for a description and stores the result
// in a new session.
func (r *Runner) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	provider, style, err := req.Validate(r.Options.DefaultProvider)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("generating diagram", "provider", provider, "style", styleOrAuto(style))

	res := &Result{Provider: provider}
	p, err := r.extract(ctx, llm.ExtractionMessages(req.Description, provider), r.chatOptions(req.Model), &res.Stats)
	if err != nil {
		return nil, err
	}
	if style != "" {
		r.Logger.Debug("style overridden", "detected", p.ArchitectureStyle, "style", style)
	}
	if err := r.build(ctx, res, p.WithStyle(style)); err != nil {
		return nil, err
	}

	sess := session.New(req.Description, provider, r.Options.SessionTTL)
	if err := r.persist(ctx, sess, res); err != nil {
		return nil, err
	}
	res.SessionID = sess.ID
	return res, nil
}

// Refine sends the stored plan and an instruction back to the model and
// replaces the session contents with the re-rendered result. Unknown
// sessions fail with SESSION_NOT_FOUND before any stage runs.
func (r *Runner) Refine(ctx context.Context, req RefineRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	unlock := r.Locks.Lock(req.SessionID)
	defer unlock()

	sess, err := r.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	provider, err := parseProvider(req.CloudProvider, sess.CloudProvider)
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = r.Options.DefaultProvider
	}
	r.Logger.Info("refining diagram", "session", sess.ID, "provider", provider)

	messages, err := llm.RefinementMessages(sess.ArchitecturePlan, req.Instruction)
	if err != nil {
		return nil, sserrors.Wrap(sserrors.ErrCodeInternal, err, "build refinement prompt")
	}
	res := &Result{Provider: provider}
	p, err := r.extract(ctx, messages, r.chatOptions(req.Model), &res.Stats)
	if err != nil {
		return nil, err
	}
	if err := r.build(ctx, res, p); err != nil {
		return nil, err
	}

	sess.CloudProvider = provider
	if err := r.persist(ctx, sess, res); err != nil {
		return nil, err
	}
	res.SessionID = sess.ID
	return res, nil
}

// Session loads a session, mapping a miss to SESSION_NOT_FOUND.
func (r *Runner) Session(ctx context.Context, id string) (*session.Session, error) {
	if err := sserrors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	sess, err := r.Sessions.Get(ctx, id)
	if err != nil {
		return nil, sserrors.Wrap(sserrors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		return nil, sserrors.New(sserrors.ErrCodeSessionNotFound, "Session not found. Generate a diagram first.")
	}
	return sess, nil
}

// build runs derive, layout and render on a validated plan.
func (r *Runner) build(ctx context.Context, res *Result, p plan.ArchitecturePlan) error {
	res.Plan = p
	_ = observability.Stage(ctx, StageDerive, func() error {
		res.Diagram = diagram.Derive(p)
		return nil
	})
	res.Stats.NodeCount = len(res.Diagram.Nodes)
	res.Stats.EdgeCount = len(res.Diagram.Edges)

	var nodes []diagram.PositionedNode
	start := time.Now()
	_ = observability.Stage(ctx, StageLayout, func() error {
		nodes = Arrange(res.Diagram, r.Options.Layout)
		return nil
	})
	res.Stats.LayoutTime = time.Since(start)

	start = time.Now()
	err := observability.Stage(ctx, StageRender, func() error {
		a, err := Render(nodes, res.Diagram.Edges, r.buildOptions(res.Provider))
		if err != nil {
			return err
		}
		res.Artifacts = *a
		return nil
	})
	res.Stats.RenderTime = time.Since(start)
	if err != nil {
		return sserrors.Wrap(sserrors.ErrCodeInternal, err, "render")
	}

	r.Logger.Info("rendered diagram",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"layout", res.Stats.LayoutTime,
		"render", res.Stats.RenderTime)
	return nil
}

func (r *Runner) buildOptions(provider plan.Provider) BuildOptions {
	opts := BuildOptions{Provider: provider, Layout: r.Options.Layout, Now: r.Options.Now}
	if r.Options.IDs != nil {
		opts.IDs = r.Options.IDs()
	}
	return opts
}

func (r *Runner) persist(ctx context.Context, sess *session.Session, res *Result) error {
	sess.ArchitecturePlan = res.Plan
	sess.DiagramPlan = res.Diagram
	sess.Document = res.Document
	sess.Scene = res.SceneJSON
	sess.Touch(r.Options.SessionTTL)

	err := observability.Stage(ctx, StagePersist, func() error {
		return r.Sessions.Set(ctx, sess)
	})
	if err != nil {
		return sserrors.Wrap(sserrors.ErrCodeInternal, err, "save session")
	}
	return nil
}

// Close releases the session store.
func (r *Runner) Close() error {
	if r.Sessions != nil {
		return r.Sessions.Close()
	}
	return nil
}

func styleOrAuto(s plan.ArchitectureStyle) string {
	if s == "" {
		return "auto"
	}
	return string(s)
}
