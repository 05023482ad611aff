package diagram

import "github.com/harishkotra/SketchStack/pkg/plan"

const defaultGlyph = "📋"

var glyphs = map[plan.ComponentType]string{
	plan.ComponentFrontend:           "🖥️",
	plan.ComponentBackend:            "⚙️",
	plan.ComponentAPIGateway:         "🚪",
	plan.ComponentLoadBalancer:       "⚖️",
	plan.ComponentDatabase:           "🗄️",
	plan.ComponentCache:              "⚡",
	plan.ComponentQueue:              "📨",
	plan.ComponentStorage:            "💾",
	plan.ComponentCDN:                "🌐",
	plan.ComponentAuth:               "🔐",
	plan.ComponentServerlessFunction: "⚡",
	plan.ComponentContainer:          "📦",
	plan.ComponentSearch:             "🔍",
	plan.ComponentMLModel:            "🧠",
	plan.ComponentVectorDB:           "🧮",
	plan.ComponentStreamProcessor:    "🌊",
	plan.ComponentMonitoring:         "📊",
	plan.ComponentLogging:            "📝",
	plan.ComponentNotification:       "🔔",
	plan.ComponentScheduler:          "⏰",
	plan.ComponentProxy:              "🔀",
	plan.ComponentServiceMesh:        "🕸️",
	plan.ComponentSecretManager:      "🔑",
	plan.ComponentDNS:                "🌍",
	plan.ComponentWAF:                "🛡️",
}

// Glyph returns a display emoji for a component type.
func Glyph(t plan.ComponentType) string {
	if g, ok := glyphs[t.Kind()]; ok {
		return g
	}
	return defaultGlyph
}
