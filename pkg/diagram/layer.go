package diagram

import "github.com/harishkotra/SketchStack/pkg/plan"

// Layer is an architectural tier used for swimlane grouping and ranking.
type Layer string

// The fixed layer set, top to bottom.
const (
	LayerSecurity      Layer = "Security"
	LayerApplication   Layer = "Application"
	LayerData          Layer = "Data"
	LayerInfra         Layer = "Infra"
	LayerObservability Layer = "Observability"
)

// DefaultLayer receives every type without an explicit mapping.
const DefaultLayer = LayerApplication

// Layers lists the layer set in display order.
var Layers = []Layer{LayerSecurity, LayerApplication, LayerData, LayerInfra, LayerObservability}

var layerOf = map[plan.ComponentType]Layer{
	plan.ComponentAuth:          LayerSecurity,
	plan.ComponentWAF:           LayerSecurity,
	plan.ComponentSecretManager: LayerSecurity,

	plan.ComponentFrontend:           LayerApplication,
	plan.ComponentBackend:            LayerApplication,
	plan.ComponentAPIGateway:         LayerApplication,
	plan.ComponentLoadBalancer:       LayerApplication,
	plan.ComponentServerlessFunction: LayerApplication,
	plan.ComponentContainer:          LayerApplication,
	plan.ComponentProxy:              LayerApplication,
	plan.ComponentServiceMesh:        LayerApplication,
	plan.ComponentMLModel:            LayerApplication,
	plan.ComponentScheduler:          LayerApplication,

	plan.ComponentDatabase:        LayerData,
	plan.ComponentCache:           LayerData,
	plan.ComponentQueue:           LayerData,
	plan.ComponentVectorDB:        LayerData,
	plan.ComponentSearch:          LayerData,
	plan.ComponentStreamProcessor: LayerData,

	plan.ComponentStorage: LayerInfra,
	plan.ComponentCDN:     LayerInfra,
	plan.ComponentDNS:     LayerInfra,

	plan.ComponentMonitoring:   LayerObservability,
	plan.ComponentLogging:      LayerObservability,
	plan.ComponentNotification: LayerObservability,
}

// LayerOf returns the layer a component type belongs to. It is total: other,
// unknown and unrecognized types all resolve to [DefaultLayer].
func LayerOf(t plan.ComponentType) Layer {
	if l, ok := layerOf[t.Kind()]; ok {
		return l
	}
	return DefaultLayer
}

// Index returns the position of l in [Layers], or -1 if l is not a known layer.
func (l Layer) Index() int {
	for i, known := range Layers {
		if known == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of the fixed layers.
func (l Layer) Valid() bool { return l.Index() >= 0 }

// ActiveLayers returns the layers that contain at least one node, in display
// order. Nodes with an invalid layer count toward the layer of their type.
func ActiveLayers(nodes []Node) []Layer {
	present := make(map[Layer]bool, len(Layers))
	for _, n := range nodes {
		present[n.EffectiveLayer()] = true
	}
	var active []Layer
	for _, l := range Layers {
		if present[l] {
			active = append(active, l)
		}
	}
	return active
}
