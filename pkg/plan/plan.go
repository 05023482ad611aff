// Package plan defines the architecture plan data model and the validator that
// turns untrusted model output into a structurally valid plan.
//
// # Overview
//
// An [ArchitecturePlan] is the semantically authoritative description of a
// system: components, directed relationships between them, data flows,
// infrastructure elements, free-form constraints, and an architecture style.
// It is what gets persisted per session and fed back into refinement.
//
// A component keeps the type string the model produced, so a plan survives
// being stored and sent back for refinement unchanged. Lookup tables work on
// the closed set returned by [ComponentType.Kind], where strings outside the
// set become [ComponentUnknown] and are treated like [ComponentOther].
//
// # Validation
//
// [Validate] runs an attempt-indexed loop: normalize the raw text
// ([Normalize]), parse it, check its structural shape against a JSON Schema
// ([Schema]), and, on failure, ask a [RepairFunc] for a corrected version.
// The loop returns an [Outcome] instead of relying on panics or sentinel
// control flow, so the repair budget is directly observable.
//
//	out := plan.Validate(ctx, raw, plan.ArchitectureSchema(), 2, repair)
//	if out.Err != nil {
//	    return out.Err
//	}
//	p := out.Value
//
// Referential integrity between relationships and components is NOT checked:
// dangling references are legal and handled by the renderers.
package plan

import "strings"

// ComponentType is the semantic kind of a component. Values decoded from a
// plan are kept verbatim; use Kind for the normalized member of the set.
type ComponentType string

// Known component kinds.
const (
	ComponentFrontend           ComponentType = "frontend"
	ComponentBackend            ComponentType = "backend"
	ComponentAPIGateway         ComponentType = "api_gateway"
	ComponentLoadBalancer       ComponentType = "load_balancer"
	ComponentDatabase           ComponentType = "database"
	ComponentCache              ComponentType = "cache"
	ComponentQueue              ComponentType = "queue"
	ComponentStorage            ComponentType = "storage"
	ComponentCDN                ComponentType = "cdn"
	ComponentAuth               ComponentType = "auth"
	ComponentServerlessFunction ComponentType = "serverless_function"
	ComponentContainer          ComponentType = "container"
	ComponentSearch             ComponentType = "search"
	ComponentMLModel            ComponentType = "ml_model"
	ComponentVectorDB           ComponentType = "vector_db"
	ComponentStreamProcessor    ComponentType = "stream_processor"
	ComponentMonitoring         ComponentType = "monitoring"
	ComponentLogging            ComponentType = "logging"
	ComponentNotification       ComponentType = "notification"
	ComponentScheduler          ComponentType = "scheduler"
	ComponentProxy              ComponentType = "proxy"
	ComponentServiceMesh        ComponentType = "service_mesh"
	ComponentSecretManager      ComponentType = "secret_manager"
	ComponentDNS                ComponentType = "dns"
	ComponentWAF                ComponentType = "waf"
	ComponentOther              ComponentType = "other"

	// ComponentUnknown marks a kind the model produced that is not in the set.
	ComponentUnknown ComponentType = "unknown"
)

// ComponentTypes lists every known kind in prompt order. ComponentUnknown is
// not included.
var ComponentTypes = []ComponentType{
	ComponentFrontend, ComponentBackend, ComponentAPIGateway, ComponentLoadBalancer,
	ComponentDatabase, ComponentCache, ComponentQueue, ComponentStorage, ComponentCDN,
	ComponentAuth, ComponentServerlessFunction, ComponentContainer, ComponentSearch,
	ComponentMLModel, ComponentVectorDB, ComponentStreamProcessor, ComponentMonitoring,
	ComponentLogging, ComponentNotification, ComponentScheduler, ComponentProxy,
	ComponentServiceMesh, ComponentSecretManager, ComponentDNS, ComponentWAF,
	ComponentOther,
}

var knownTypes = func() map[ComponentType]bool {
	m := make(map[ComponentType]bool, len(ComponentTypes))
	for _, t := range ComponentTypes {
		m[t] = true
	}
	return m
}()

// ParseComponentType maps a free-form string onto the closed set. Matching is
// case-insensitive and treats spaces and hyphens as underscores, so
// "API Gateway" and "api-gateway" both yield ComponentAPIGateway.
func ParseComponentType(s string) ComponentType {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if t := ComponentType(norm); knownTypes[t] {
		return t
	}
	return ComponentUnknown
}

// IsKnown reports whether t is one of the known kinds.
func (t ComponentType) IsKnown() bool { return knownTypes[t] }

// Kind maps t onto the closed set with ParseComponentType.
func (t ComponentType) Kind() ComponentType {
	if knownTypes[t] {
		return t
	}
	return ParseComponentType(string(t))
}

// ArchitectureStyle names the overall shape of a system.
type ArchitectureStyle string

// Supported architecture styles.
const (
	StyleMicroservices ArchitectureStyle = "microservices"
	StyleServerless    ArchitectureStyle = "serverless"
	StyleMonolith      ArchitectureStyle = "monolith"
	StyleEventDriven   ArchitectureStyle = "event-driven"
	StyleRAGPipeline   ArchitectureStyle = "rag-pipeline"
	StyleDataPipeline  ArchitectureStyle = "data-pipeline"
	StyleAgentWorkflow ArchitectureStyle = "agent-workflow"
	StyleLayered       ArchitectureStyle = "layered"
	StyleHexagonal     ArchitectureStyle = "hexagonal"
)

// DefaultStyle is applied when the model omits architecture_style.
const DefaultStyle = StyleLayered

// ArchitectureStyles lists the supported styles.
var ArchitectureStyles = []ArchitectureStyle{
	StyleMicroservices, StyleServerless, StyleMonolith, StyleEventDriven,
	StyleRAGPipeline, StyleDataPipeline, StyleAgentWorkflow, StyleLayered,
	StyleHexagonal,
}

// ValidStyle reports whether s is a supported architecture style.
func ValidStyle(s string) bool {
	for _, st := range ArchitectureStyles {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Provider is the cloud provider used to pick icon styles.
type Provider string

// Supported providers.
const (
	ProviderAWS     Provider = "aws"
	ProviderGCP     Provider = "gcp"
	ProviderAzure   Provider = "azure"
	ProviderNeutral Provider = "neutral"
)

// Providers lists the supported providers.
var Providers = []Provider{ProviderAWS, ProviderGCP, ProviderAzure, ProviderNeutral}

// ParseProvider returns the provider named by s. An empty string yields
// ProviderNeutral; an unsupported name yields false.
func ParseProvider(s string) (Provider, bool) {
	if s == "" {
		return ProviderNeutral, true
	}
	for _, p := range Providers {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Component is a single building block of the architecture.
type Component struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        ComponentType `json:"type"`
	Description string        `json:"description"`
}

// Relationship is a directed connection between two components.
// From and To are not guaranteed to reference existing components.
type Relationship struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Label    string `json:"label"`
	Protocol string `json:"protocol"`
}

// DataFlow describes what data moves between two components.
type DataFlow struct {
	From string `json:"from"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// Infra is an infrastructure element such as a VPC or cluster.
type Infra struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ArchitecturePlan is the validated structural description of a system.
type ArchitecturePlan struct {
	Components        []Component       `json:"components"`
	Relationships     []Relationship    `json:"relationships"`
	DataFlows         []DataFlow        `json:"data_flows"`
	Infra             []Infra           `json:"infra"`
	Constraints       []string          `json:"constraints"`
	ArchitectureStyle ArchitectureStyle `json:"architecture_style"`
}

// applyDefaults fills collections and the style the model may omit so
// encoded plans never carry null arrays.
func (p *ArchitecturePlan) applyDefaults() {
	if p.Relationships == nil {
		p.Relationships = []Relationship{}
	}
	if p.DataFlows == nil {
		p.DataFlows = []DataFlow{}
	}
	if p.Infra == nil {
		p.Infra = []Infra{}
	}
	if p.Constraints == nil {
		p.Constraints = []string{}
	}
	if p.ArchitectureStyle == "" {
		p.ArchitectureStyle = DefaultStyle
	}
}

// WithStyle returns a copy of p whose style is replaced by s. An empty s
// keeps the extracted style.
func (p ArchitecturePlan) WithStyle(s ArchitectureStyle) ArchitecturePlan {
	if s != "" {
		p.ArchitectureStyle = s
	}
	return p
}
