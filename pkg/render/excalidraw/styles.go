package excalidraw

import "github.com/harishkotra/SketchStack/pkg/plan"

// ShapeKind is the Excalidraw element type used for a node.
type ShapeKind string

const (
	Rectangle ShapeKind = "rectangle"
	Ellipse   ShapeKind = "ellipse"
)

// Style is the fill, outline and shape of a node.
type Style struct {
	Name       string
	Background string
	Stroke     string
	Shape      ShapeKind
}

var (
	gatewayStyle  = Style{"gateway", "#eef2ff", "#6366f1", Rectangle}
	serviceStyle  = Style{"service", "#ffffff", "#64748b", Rectangle}
	databaseStyle = Style{"database", "#f0fdf4", "#22c55e", Ellipse}
	queueStyle    = Style{"queue", "#fef3c7", "#f59e0b", Rectangle}
	cacheStyle    = Style{"cache", "#fff7ed", "#ea580c", Ellipse}
	storageStyle  = Style{"storage", "#eff6ff", "#3b82f6", Rectangle}
	otherStyle    = Style{"other", "#f8fafc", "#94a3b8", Rectangle}
)

var styles = map[plan.ComponentType]Style{
	plan.ComponentAPIGateway:   gatewayStyle,
	plan.ComponentLoadBalancer: gatewayStyle,
	plan.ComponentProxy:        gatewayStyle,
	plan.ComponentServiceMesh:  gatewayStyle,

	plan.ComponentBackend:            serviceStyle,
	plan.ComponentServerlessFunction: serviceStyle,
	plan.ComponentContainer:          serviceStyle,
	plan.ComponentScheduler:          serviceStyle,
	plan.ComponentMLModel:            serviceStyle,

	plan.ComponentDatabase: databaseStyle,
	plan.ComponentVectorDB: databaseStyle,

	plan.ComponentQueue:           queueStyle,
	plan.ComponentStreamProcessor: queueStyle,

	plan.ComponentCache: cacheStyle,

	plan.ComponentStorage: storageStyle,
	plan.ComponentCDN:     storageStyle,
}

// StyleOf returns the node style for a component type. Types without a
// dedicated style use the neutral "other" style.
func StyleOf(t plan.ComponentType) Style {
	if s, ok := styles[t.Kind()]; ok {
		return s
	}
	return otherStyle
}
