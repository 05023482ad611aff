package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

func joinTypes() string {
	names := make([]string, len(plan.ComponentTypes))
	for i, t := range plan.ComponentTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func joinStyles() string {
	names := make([]string, len(plan.ArchitectureStyles))
	for i, s := range plan.ArchitectureStyles {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

const extractionSchema = `{
  "components": [
    {
      "id": "string (unique snake_case identifier)",
      "name": "string (human-readable name)",
      "type": "string (one of: %s)",
      "description": "string (brief purpose)"
    }
  ],
  "relationships": [
    {
      "from": "string (component id)",
      "to": "string (component id)",
      "label": "string (relationship description)",
      "protocol": "string (e.g. REST, gRPC, WebSocket, AMQP, Kafka, HTTP, TCP, UDP, custom)"
    }
  ],
  "data_flows": [
    {
      "from": "string (component id)",
      "to": "string (component id)",
      "data": "string (what data flows)"
    }
  ],
  "infra": [
    {
      "id": "string",
      "name": "string",
      "type": "string (e.g. vpc, subnet, cluster, region, availability_zone, namespace)"
    }
  ],
  "constraints": ["string (e.g. must be highly available, low latency, GDPR compliant)"],
  "architecture_style": "string (one of: %s)"
}`

const extractionExamples = `## Few-shot examples

### Example 1. User says: "A RAG pipeline that ingests PDFs, chunks them, stores embeddings in a vector DB, and answers questions"
{
  "components": [
    {"id": "pdf_ingestion", "name": "PDF Ingestion Service", "type": "backend", "description": "Ingests and parses PDF documents"},
    {"id": "chunker", "name": "Text Chunker", "type": "backend", "description": "Splits documents into semantic chunks"},
    {"id": "embedding_model", "name": "Embedding Model", "type": "ml_model", "description": "Generates vector embeddings from text chunks"},
    {"id": "vector_db", "name": "Vector Database", "type": "vector_db", "description": "Stores and indexes document embeddings"},
    {"id": "llm", "name": "LLM", "type": "ml_model", "description": "Generates answers using retrieved context"},
    {"id": "api", "name": "Query API", "type": "api_gateway", "description": "Accepts user questions and returns answers"},
    {"id": "frontend", "name": "Chat UI", "type": "frontend", "description": "User interface for asking questions"}
  ],
  "relationships": [
    {"from": "pdf_ingestion", "to": "chunker", "label": "sends raw text", "protocol": "internal"},
    {"from": "chunker", "to": "embedding_model", "label": "sends chunks", "protocol": "internal"},
    {"from": "embedding_model", "to": "vector_db", "label": "stores embeddings", "protocol": "REST"},
    {"from": "api", "to": "vector_db", "label": "similarity search", "protocol": "REST"},
    {"from": "api", "to": "llm", "label": "sends context + question", "protocol": "REST"},
    {"from": "frontend", "to": "api", "label": "user query", "protocol": "HTTP"}
  ],
  "data_flows": [
    {"from": "pdf_ingestion", "to": "vector_db", "data": "document embeddings"},
    {"from": "frontend", "to": "llm", "data": "user questions to AI answers"}
  ],
  "infra": [],
  "constraints": ["Low latency retrieval", "Scalable embedding storage"],
  "architecture_style": "rag-pipeline"
}

### Example 2. User says: "Microservice e-commerce with API gateway, auth, product catalog, orders, payments, and a message queue"
{
  "components": [
    {"id": "api_gw", "name": "API Gateway", "type": "api_gateway", "description": "Routes requests to microservices"},
    {"id": "auth_svc", "name": "Auth Service", "type": "auth", "description": "Handles authentication and authorization"},
    {"id": "product_svc", "name": "Product Catalog", "type": "backend", "description": "Manages product listings"},
    {"id": "order_svc", "name": "Order Service", "type": "backend", "description": "Manages orders and order state"},
    {"id": "payment_svc", "name": "Payment Service", "type": "backend", "description": "Processes payments"},
    {"id": "product_db", "name": "Product DB", "type": "database", "description": "Stores product data"},
    {"id": "order_db", "name": "Order DB", "type": "database", "description": "Stores order data"},
    {"id": "msg_queue", "name": "Message Queue", "type": "queue", "description": "Async communication between services"},
    {"id": "frontend", "name": "Web Store", "type": "frontend", "description": "Customer-facing storefront"}
  ],
  "relationships": [
    {"from": "frontend", "to": "api_gw", "label": "HTTP requests", "protocol": "HTTPS"},
    {"from": "api_gw", "to": "auth_svc", "label": "auth check", "protocol": "REST"},
    {"from": "api_gw", "to": "product_svc", "label": "product queries", "protocol": "REST"},
    {"from": "api_gw", "to": "order_svc", "label": "order operations", "protocol": "REST"},
    {"from": "order_svc", "to": "payment_svc", "label": "payment request", "protocol": "REST"},
    {"from": "order_svc", "to": "msg_queue", "label": "order events", "protocol": "AMQP"},
    {"from": "product_svc", "to": "product_db", "label": "CRUD", "protocol": "TCP"},
    {"from": "order_svc", "to": "order_db", "label": "CRUD", "protocol": "TCP"}
  ],
  "data_flows": [
    {"from": "frontend", "to": "order_db", "data": "customer orders"},
    {"from": "order_svc", "to": "payment_svc", "data": "payment intents"}
  ],
  "infra": [],
  "constraints": ["Independently deployable services", "Eventual consistency via message queue"],
  "architecture_style": "microservices"
}`

// ExtractionPrompt is the system prompt for turning a description into an
// architecture plan. provider is mentioned as the cloud preference.
func ExtractionPrompt(provider plan.Provider) string {
	if provider == "" {
		provider = plan.ProviderNeutral
	}
	var b strings.Builder
	b.WriteString("You are a senior cloud architect.\n")
	b.WriteString("Your task: extract system components and relationships from the user's architecture description.\n")
	fmt.Fprintf(&b, "Cloud preference: %s.\n\n", provider)
	b.WriteString("Return ONLY valid JSON. No prose, no markdown, no explanation.\n\n")
	b.WriteString("The JSON must follow this exact schema:\n")
	fmt.Fprintf(&b, extractionSchema, joinTypes(), joinStyles())
	b.WriteString("\n\n")
	b.WriteString(extractionExamples)
	return b.String()
}

// ExtractionMessages builds the conversation for a first generation.
func ExtractionMessages(description string, provider plan.Provider) []Message {
	user := "Analyze the following system architecture description and extract all components, " +
		"relationships, data flows, infrastructure, constraints, and architecture style.\n\n" +
		"Description:\n" + description + "\n\n" +
		"Return ONLY the JSON object. No prose."
	return []Message{
		{Role: RoleSystem, Content: ExtractionPrompt(provider)},
		{Role: RoleUser, Content: user},
	}
}

const refinementPrompt = `You are a senior cloud architect.
You are given an existing architecture plan as JSON and a user instruction to modify it.

Rules:
- Modify ONLY the parts affected by the instruction.
- Keep all existing component IDs stable when possible.
- Add new components with new unique IDs.
- Remove components only if explicitly requested.
- Preserve existing relationships that are not affected.
- Return the FULL updated JSON (not a diff).
- Return ONLY valid JSON. No prose, no markdown.

The JSON schema is the same as the original:
{
  "components": [...],
  "relationships": [...],
  "data_flows": [...],
  "infra": [...],
  "constraints": [...],
  "architecture_style": "string"
}`

// RefinementMessages builds the conversation for refining an existing plan.
// The whole plan is sent; the model returns the whole updated plan.
func RefinementMessages(p plan.ArchitecturePlan, instruction string) ([]Message, error) {
	current, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	user := "Here is the current architecture plan:\n\n" + string(current) + "\n\n" +
		"User instruction:\n" + instruction + "\n\n" +
		"Return the FULL updated JSON. No prose."
	return []Message{
		{Role: RoleSystem, Content: refinementPrompt},
		{Role: RoleUser, Content: user},
	}, nil
}

// RepairMessages builds the conversation asking the model to fix JSON that
// failed validation with errMsg.
func RepairMessages(errMsg, raw string) []Message {
	return []Message{
		{
			Role:    RoleSystem,
			Content: "You are a JSON repair assistant. Fix the JSON below so it matches the required schema. Return ONLY the corrected JSON, no prose.",
		},
		{
			Role: RoleUser,
			Content: "The following JSON failed validation.\n\nError: " + errMsg +
				"\n\nOriginal JSON:\n" + raw +
				"\n\nFix the JSON and return ONLY the corrected JSON.",
		},
	}
}
