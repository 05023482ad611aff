// Package presets holds ready-made architecture descriptions for common
// system shapes.
//
// Five presets are built in. A YAML file can add more or replace built-ins
// by id:
//
//	presets:
//	  - id: chat-app
//	    name: Realtime Chat
//	    description: A websocket chat service with presence and history...
//	    cloudProvider: gcp
//	    architectureStyle: microservices
package presets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

// Preset is a named description with the provider and style to generate it
// with.
type Preset struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Provider    plan.Provider          `json:"cloudProvider" yaml:"cloudProvider"`
	Style       plan.ArchitectureStyle `json:"architectureStyle" yaml:"architectureStyle"`
}

// Summary is the listing form of a preset.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is an ordered set of presets.
type Catalog struct {
	order []string
	byID  map[string]Preset
}

var builtin = []Preset{
	{
		ID:   "rag-pipeline",
		Name: "RAG Pipeline",
		Description: "Build a Retrieval-Augmented Generation pipeline that ingests PDFs, chunks them into semantic segments, " +
			"generates vector embeddings, stores them in a vector database (Pinecone/Weaviate), and answers user questions " +
			"by retrieving relevant context and passing it to an LLM. Include a FastAPI backend, a React chat UI, and " +
			"observability with logging and monitoring.",
		Provider: plan.ProviderAWS,
		Style:    plan.StyleRAGPipeline,
	},
	{
		ID:   "microservices",
		Name: "Microservices E-Commerce",
		Description: "Design a microservices-based e-commerce backend with: API Gateway for routing, Auth Service with JWT " +
			"tokens, Product Catalog service with PostgreSQL, Order Service with event sourcing, Payment Service integrating " +
			"with Stripe, Notification Service (email + push), a message queue (RabbitMQ/SQS) for async communication between " +
			"services, Redis cache for product listings, CDN for static assets, and centralized logging with ELK stack. Each " +
			"service should be independently deployable in Docker containers.",
		Provider: plan.ProviderAWS,
		Style:    plan.StyleMicroservices,
	},
	{
		ID:   "agent-system",
		Name: "Multi-Agent AI System",
		Description: "Create a multi-agent AI workflow system where: an Orchestrator Agent receives user tasks and delegates " +
			"to specialized agents: a Research Agent that searches the web and summarizes findings, a Code Agent that writes " +
			"and reviews code, a Data Agent that queries databases and generates reports. Agents communicate via a message " +
			"queue. Include a vector database for agent memory, an LLM gateway (supporting OpenAI and local Ollama), a REST " +
			"API for the frontend, a React dashboard showing agent activity, and a monitoring system tracking token usage, " +
			"latency, and errors.",
		Provider: plan.ProviderNeutral,
		Style:    plan.StyleAgentWorkflow,
	},
	{
		ID:   "event-driven-orders",
		Name: "Event-Driven Order System",
		Description: "Build an event-driven order processing system: customers place orders via a web app, orders go through " +
			"an API Gateway to an Order Service. Order events are published to Kafka/EventBridge. A Payment Processor consumes " +
			"payment events, an Inventory Service updates stock, a Shipping Service arranges delivery, and a Notification " +
			"Service sends order updates via email and SMS. Include a dead letter queue for failed events, CQRS with separate " +
			"read/write databases, and CloudWatch/Datadog for monitoring.",
		Provider: plan.ProviderAWS,
		Style:    plan.StyleEventDriven,
	},
	{
		ID:   "streaming-analytics",
		Name: "Streaming Analytics Pipeline",
		Description: "Design a real-time streaming analytics pipeline: IoT sensors push data via MQTT to an ingestion gateway. " +
			"Data flows through Kafka/Kinesis streams to a stream processor (Flink/Spark Streaming) for real-time aggregations " +
			"and anomaly detection. Processed data lands in a data lake (S3/GCS) and a time-series database " +
			"(InfluxDB/TimescaleDB). A batch processing layer (Spark) runs daily aggregations. Results are served via a REST " +
			"API to a Grafana dashboard. Include schema registry, data quality checks, and alerting.",
		Provider: plan.ProviderAWS,
		Style:    plan.StyleDataPipeline,
	},
}

// Builtin returns a catalog holding only the built-in presets.
func Builtin() *Catalog {
	c := &Catalog{byID: make(map[string]Preset, len(builtin))}
	for _, p := range builtin {
		c.add(p)
	}
	return c
}

// Load returns the built-in presets extended by the YAML file at path.
// An empty path or a missing file yields the built-ins.
func Load(path string) (*Catalog, error) {
	c := Builtin()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	if err := c.Merge(data); err != nil {
		return nil, fmt.Errorf("presets %s: %w", path, err)
	}
	return c, nil
}

// Merge adds the presets in a YAML document. Presets with an existing id
// replace the earlier entry in place.
func (c *Catalog) Merge(data []byte) error {
	var file struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	for i, p := range file.Presets {
		if err := p.validate(); err != nil {
			return fmt.Errorf("preset %d: %w", i, err)
		}
		c.add(p)
	}
	return nil
}

func (p Preset) validate() error {
	if p.ID == "" || p.Name == "" || p.Description == "" {
		return errors.New("id, name and description are required")
	}
	if _, ok := plan.ParseProvider(string(p.Provider)); !ok {
		return fmt.Errorf("%s: unknown cloudProvider %q", p.ID, p.Provider)
	}
	if p.Style != "" && !plan.ValidStyle(string(p.Style)) {
		return fmt.Errorf("%s: unknown architectureStyle %q", p.ID, p.Style)
	}
	return nil
}

func (c *Catalog) add(p Preset) {
	if _, ok := c.byID[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.byID[p.ID] = p
}

// Get returns the preset with the given id.
func (c *Catalog) Get(id string) (Preset, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// List returns id and name of every preset in catalog order.
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Summary{ID: id, Name: c.byID[id].Name})
	}
	return out
}

// All returns every preset in catalog order.
func (c *Catalog) All() []Preset {
	out := make([]Preset, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
